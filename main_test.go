package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kliva/kliva/internal/config"
	"github.com/kliva/kliva/internal/logging"
	"github.com/kliva/kliva/internal/settings"
	"github.com/kliva/kliva/internal/units"
)

func TestParseCLIFlagsPriority(t *testing.T) {
	t.Setenv("KLIVA_CONFIG", "/tmp/env.toml")

	opts, err := parseCLIFlags([]string{})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/env.toml" {
		t.Fatalf("应优先使用环境变量，得到 %s", opts.configPath)
	}

	opts, err = parseCLIFlags([]string{"--config", "/tmp/flag.toml"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/flag.toml" {
		t.Fatalf("flag 应高于环境变量，得到 %s", opts.configPath)
	}
}

func TestParseCLIFlagsRejectsUnknownUnit(t *testing.T) {
	if _, err := parseCLIFlags([]string{"--set-units", "furlongs"}); err == nil {
		t.Fatalf("未知单位应返回错误")
	}
}

func TestRunCheckConfigSuccess(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{configPath: configFixture(t, "valid.toml"), checkOnly: true})
	if code != 0 {
		t.Fatalf("期望退出码 0，得到 %d", code)
	}
}

func TestRunCheckConfigFailure(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{configPath: configFixture(t, "invalid.toml"), checkOnly: true})
	if code == 0 {
		t.Fatalf("无效配置应返回非零退出码")
	}
	if !strings.Contains(stdErr.(*bytes.Buffer).String(), "加载配置失败") {
		t.Fatalf("stderr 应包含失败原因")
	}
}

func TestRunVersionOutput(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{showVersion: true})
	if code != 0 {
		t.Fatalf("version 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOut.(*bytes.Buffer).String(), "kliva") {
		t.Fatalf("version 输出应包含 kliva 标识")
	}
}

func TestRunSetTokenAndUnits(t *testing.T) {
	useBufferWriters(t)
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	cfgPath := writeConfigFile(t, fmt.Sprintf(`
LogLevel = "error"
SettingsPath = %q
`, settingsPath))

	code := run(cliOptions{configPath: cfgPath, setToken: "tok-1", setUnits: "imperial"})
	if code != 0 {
		t.Fatalf("保存设置应成功，得到 %d（%s）", code, stdErr.(*bytes.Buffer).String())
	}

	store, err := settings.NewFileStore(settingsPath, "")
	if err != nil {
		t.Fatalf("打开设置失败: %v", err)
	}
	token, err := store.AccessToken(context.Background())
	if err != nil || token != "tok-1" {
		t.Fatalf("令牌未保存: %q %v", token, err)
	}
	unit, _ := store.DistanceUnit(context.Background())
	if unit != units.Imperial {
		t.Fatalf("单位未保存: %s", unit)
	}
}

func TestBuildAppServesCachedSegments(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("access_token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/v3/athletes/123/segments/starred" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Hawk Hill", "distance": 1609.34}]`))
	}))
	defer upstream.Close()

	cfg := &config.Config{
		Global: config.GlobalConfig{
			ListenPort:      5000,
			UpstreamTimeout: config.Duration(5 * time.Second),
		},
		Strava: config.StravaConfig{
			BaseURL:      upstream.URL + "/api/v3",
			AccessToken:  "tok",
			DistanceUnit: units.Imperial,
		},
	}

	app, err := buildApp(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("buildApp 失败: %v", err)
	}

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/athletes/123/segments/starred", nil))
		if err != nil {
			t.Fatalf("app.Test failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, string(body))
		}
		var list []struct {
			Distance float64 `json:"distance"`
			Unit     string  `json:"measurement_unit"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil || len(list) != 1 {
			t.Fatalf("decode body: %v %v", list, err)
		}
		if math.Abs(list[0].Distance-1.0) > 1e-4 || list[0].Unit != "imperial" {
			t.Fatalf("距离应换算为英里: %+v", list[0])
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("第二次请求应命中缓存，实际上游请求 %d 次", hits.Load())
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/segments/77", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("上游 404 应映射为 404，得到 %d", resp.StatusCode)
	}
}

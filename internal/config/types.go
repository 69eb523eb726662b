package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kliva/kliva/internal/units"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if seconds, err := time.ParseDuration(raw); err == nil {
		*d = Duration(seconds)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述进程级运行参数。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	SettingsPath    string   `mapstructure:"SettingsPath"`
	CacheTTL        Duration `mapstructure:"CacheTTL"`
	UpstreamTimeout Duration `mapstructure:"UpstreamTimeout"`
}

// StravaConfig 描述远端 API 地址以及可选的固定凭证/单位偏好。
// AccessToken 为空时从 SettingsPath 指向的设置文件读取。
type StravaConfig struct {
	BaseURL      string                 `mapstructure:"BaseURL"`
	AccessToken  string                 `mapstructure:"AccessToken"`
	DistanceUnit units.DistanceUnitType `mapstructure:"DistanceUnit"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Strava StravaConfig `mapstructure:"Strava"`
}

// HasStaticToken 表示配置文件是否直接提供了访问令牌。
func (s StravaConfig) HasStaticToken() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

// TokenSource 输出 `config` 或 `settings`，供日志字段使用，避免直接打印令牌。
func (s StravaConfig) TokenSource() string {
	if s.HasStaticToken() {
		return "config"
	}
	return "settings"
}

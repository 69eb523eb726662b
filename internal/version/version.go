package version

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
)

// Version/Commit 可在构建时通过 -ldflags 注入，默认使用开发占位符。
var (
	Version = "0.1.0"
	Commit  = "dev"
)

// AppVersion 是应用版本号的结构化表示，Revision 对应预发布/构建序号之外的第四段，通常为 0。
type AppVersion struct {
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Build    int `json:"build"`
	Revision int `json:"revision"`
}

func (v AppVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

var current = sync.OnceValue(func() AppVersion {
	return Parse(Version)
})

// Current 返回进程级的版本值：首次访问时解析 Version，之后始终返回同一结果。
func Current() AppVersion {
	return current()
}

// Parse 将 "1.2.3"、"v1.2" 或 "v1.2.3-rc.1" 等写法解析为 AppVersion，无法识别时返回零值。
func Parse(raw string) AppVersion {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AppVersion{}
	}
	if !strings.HasPrefix(raw, "v") {
		raw = "v" + raw
	}
	canonical := semver.Canonical(raw)
	if canonical == "" {
		return AppVersion{}
	}

	core := strings.TrimPrefix(canonical, "v")
	core = strings.TrimSuffix(core, semver.Prerelease(canonical))
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return AppVersion{}
	}

	result := AppVersion{}
	result.Major, _ = strconv.Atoi(parts[0])
	result.Minor, _ = strconv.Atoi(parts[1])
	result.Build, _ = strconv.Atoi(parts[2])
	return result
}

// Full 返回便于 CLI 打印的完整版本信息。
func Full() string {
	return fmt.Sprintf("kliva %s (%s)", Version, Commit)
}

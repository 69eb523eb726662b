package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/kliva/kliva/internal/units"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.SettingsPath == "" && !c.Strava.HasStaticToken() {
		return newFieldError("Global.SettingsPath", "未配置 AccessToken 时不能为空")
	}
	if g.CacheTTL.DurationValue() < 0 {
		return newFieldError("Global.CacheTTL", "不能为负数")
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("Global.UpstreamTimeout", "必须大于 0")
	}

	if err := validateBaseURL(c.Strava.BaseURL); err != nil {
		return fmt.Errorf("Strava.BaseURL: %w", err)
	}
	switch c.Strava.DistanceUnit {
	case "", units.Metric, units.Imperial:
	default:
		return newFieldError("Strava.DistanceUnit", "仅支持 metric/imperial")
	}

	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("缺少 API 地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，地址: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("地址缺少 Host: %s", raw)
	}
	return nil
}

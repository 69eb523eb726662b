package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/kliva/kliva/internal/config"
	"github.com/kliva/kliva/internal/units"
)

// ErrNoAccessToken 表示尚未保存访问令牌。
var ErrNoAccessToken = errors.New("access token not configured")

// Store 提供每次 API 调用所需的令牌与距离单位偏好。
type Store interface {
	AccessToken(ctx context.Context) (string, error)
	DistanceUnit(ctx context.Context) (units.DistanceUnitType, error)
}

// Static 返回固定值，用于配置文件直接提供令牌的场景。
type Static struct {
	Token string
	Unit  units.DistanceUnitType
}

func (s Static) AccessToken(ctx context.Context) (string, error) {
	if strings.TrimSpace(s.Token) == "" {
		return "", ErrNoAccessToken
	}
	return s.Token, nil
}

func (s Static) DistanceUnit(ctx context.Context) (units.DistanceUnitType, error) {
	if s.Unit == "" {
		return units.Metric, nil
	}
	return s.Unit, nil
}

// FromConfig 在配置提供令牌时返回 Static，否则返回指向 SettingsPath 的 FileStore。
func FromConfig(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.Strava.HasStaticToken() {
		return Static{Token: cfg.Strava.AccessToken, Unit: cfg.Strava.DistanceUnit}, nil
	}
	return NewFileStore(cfg.Global.SettingsPath, cfg.Strava.DistanceUnit)
}

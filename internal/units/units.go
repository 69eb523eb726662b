// Package units 负责距离单位偏好的解析与换算，所有远端数据均以米为原始单位。
package units

import (
	"fmt"
	"strings"
)

// DistanceUnitType 表示用户选择的距离单位体系。
type DistanceUnitType string

const (
	Metric   DistanceUnitType = "metric"
	Imperial DistanceUnitType = "imperial"
)

const (
	metersPerKilometer = 1000.0
	metersPerMile      = 1609.344
	feetPerMeter       = 3.28084
)

// Parse 将配置或设置文件中的字符串标准化为 DistanceUnitType，空串返回 Metric。
func Parse(raw string) (DistanceUnitType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(Metric):
		return Metric, nil
	case string(Imperial):
		return Imperial, nil
	default:
		return "", fmt.Errorf("不支持的距离单位: %s", raw)
	}
}

// UnmarshalText 使 mapstructure/JSON 可以直接解码单位字段。
func (u *DistanceUnitType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// MarshalText 输出标准化后的单位名称。
func (u DistanceUnitType) MarshalText() ([]byte, error) {
	if u == "" {
		return []byte(Metric), nil
	}
	return []byte(u), nil
}

func (u DistanceUnitType) String() string {
	if u == "" {
		return string(Metric)
	}
	return string(u)
}

// DistanceLabel 返回换算后距离字段所使用的单位缩写。
func (u DistanceUnitType) DistanceLabel() string {
	if u == Imperial {
		return "mi"
	}
	return "km"
}

// ElevationLabel 返回换算后海拔字段所使用的单位缩写。
func (u DistanceUnitType) ElevationLabel() string {
	if u == Imperial {
		return "ft"
	}
	return "m"
}

// Distance 将米换算为公里（metric）或英里（imperial）。
func (u DistanceUnitType) Distance(meters float64) float64 {
	if u == Imperial {
		return meters / metersPerMile
	}
	return meters / metersPerKilometer
}

// Elevation 将米换算为米（metric）或英尺（imperial）。
func (u DistanceUnitType) Elevation(meters float64) float64 {
	if u == Imperial {
		return meters * feetPerMeter
	}
	return meters
}

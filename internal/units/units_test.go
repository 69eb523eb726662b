package units

import (
	"math"
	"testing"
)

func TestDistanceConversion(t *testing.T) {
	testCases := []struct {
		name   string
		unit   DistanceUnitType
		meters float64
		want   float64
	}{
		{"imperial mile", Imperial, 1609.34, 1.0},
		{"metric mile", Metric, 1609.34, 1.60934},
		{"metric zero", Metric, 0, 0},
		{"empty defaults to metric", "", 5000, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.unit.Distance(tc.meters)
			if math.Abs(got-tc.want) > 1e-5 {
				t.Fatalf("期望 %v，得到 %v", tc.want, got)
			}
		})
	}
}

func TestElevationConversion(t *testing.T) {
	if got := Metric.Elevation(100); got != 100 {
		t.Fatalf("metric 海拔应保持米，得到 %v", got)
	}
	if got := Imperial.Elevation(100); math.Abs(got-328.084) > 1e-6 {
		t.Fatalf("imperial 海拔应换算为英尺，得到 %v", got)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		raw       string
		want      DistanceUnitType
		shouldErr bool
	}{
		{"", Metric, false},
		{"Metric", Metric, false},
		{" imperial ", Imperial, false},
		{"nautical", "", true},
	}

	for _, tc := range testCases {
		got, err := Parse(tc.raw)
		if tc.shouldErr {
			if err == nil {
				t.Fatalf("%q 应返回错误", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q 不应返回错误: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("%q 期望 %s，得到 %s", tc.raw, tc.want, got)
		}
	}
}

func TestLabels(t *testing.T) {
	if Imperial.DistanceLabel() != "mi" || Imperial.ElevationLabel() != "ft" {
		t.Fatalf("imperial 单位缩写不正确")
	}
	if Metric.DistanceLabel() != "km" || Metric.ElevationLabel() != "m" {
		t.Fatalf("metric 单位缩写不正确")
	}
}

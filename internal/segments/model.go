package segments

import (
	"time"

	"github.com/kliva/kliva/internal/units"
)

// SegmentSummary 是列表接口返回的精简分段表示。距离/海拔字段在 Normalize 之前以米为单位。
type SegmentSummary struct {
	ID              int64                  `json:"id"`
	ResourceState   int                    `json:"resource_state"`
	Name            string                 `json:"name"`
	ActivityType    string                 `json:"activity_type"`
	Distance        float64                `json:"distance"`
	AverageGrade    float64                `json:"average_grade"`
	MaximumGrade    float64                `json:"maximum_grade"`
	ElevationHigh   float64                `json:"elevation_high"`
	ElevationLow    float64                `json:"elevation_low"`
	StartLatLng     []float64              `json:"start_latlng,omitempty"`
	EndLatLng       []float64              `json:"end_latlng,omitempty"`
	ClimbCategory   int                    `json:"climb_category"`
	City            string                 `json:"city"`
	State           string                 `json:"state"`
	Country         string                 `json:"country"`
	Private         bool                   `json:"private"`
	Starred         bool                   `json:"starred"`
	MeasurementUnit units.DistanceUnitType `json:"measurement_unit,omitempty"`
}

// Segment 是分段详情。
type Segment struct {
	SegmentSummary
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	TotalElevationGain  float64              `json:"total_elevation_gain"`
	EffortCount         int                  `json:"effort_count"`
	AthleteCount        int                  `json:"athlete_count"`
	StarCount           int                  `json:"star_count"`
	Hazardous           bool                 `json:"hazardous"`
	Map                 *PolylineMap         `json:"map,omitempty"`
	AthleteSegmentStats *AthleteSegmentStats `json:"athlete_segment_stats,omitempty"`
}

type PolylineMap struct {
	ID       string `json:"id"`
	Polyline string `json:"polyline"`
}

// AthleteSegmentStats 是当前用户在该分段上的个人记录。
type AthleteSegmentStats struct {
	PRElapsedTime int    `json:"pr_elapsed_time"`
	PRDate        string `json:"pr_date"`
	EffortCount   int    `json:"effort_count"`
}

// Normalize 将距离/海拔字段从米换算到 unit 对应的单位并记录单位。
// 已换算过的对象不会被二次换算。
func (s *SegmentSummary) Normalize(unit units.DistanceUnitType) {
	if s.MeasurementUnit != "" {
		return
	}
	if unit == "" {
		unit = units.Metric
	}
	s.Distance = unit.Distance(s.Distance)
	s.ElevationHigh = unit.Elevation(s.ElevationHigh)
	s.ElevationLow = unit.Elevation(s.ElevationLow)
	s.MeasurementUnit = unit
}

func (s *Segment) Normalize(unit units.DistanceUnitType) {
	if s.MeasurementUnit != "" {
		return
	}
	if unit == "" {
		unit = units.Metric
	}
	s.TotalElevationGain = unit.Elevation(s.TotalElevationGain)
	s.SegmentSummary.Normalize(unit)
}

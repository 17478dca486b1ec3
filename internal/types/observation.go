package types

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Column names as they appear in the telemetry exports and database tables
const (
	ColVesselID              = "VesselId"
	ColShaftPower            = "MEShaftPowerActual"
	ColRunningMinutes        = "ME1RunningHoursMinute"
	ColMeanDraft             = "MeanDraft"
	ColRelativeWindDirection = "RelativeWindDirection"
	ColSpeedOG               = "SpeedOG"
	ColSpeedTW               = "SpeedTW"
	ColBFScale               = "BFScale"

	ColIsSpeedDropValid      = "IsSpeedDropValid"
	ColIsDeltaPDOnSpeedValid = "IsDeltaPDOnSpeedValid"
	ColISOCorrectedFOC       = "ISOCorrectedFOC"
	ColMEFOCIdealPD          = "MEFOCIdealPD"
	ColMEFOCIdealPDCor       = "MEFOCIdealPDCor"
	ColLCVCorrectedFOC       = "LCVCorrectedFOC"
)

// RequiredColumns must be present in every data source
var RequiredColumns = []string{
	ColVesselID,
	ColShaftPower,
	ColRunningMinutes,
	ColMeanDraft,
	ColRelativeWindDirection,
	ColSpeedOG,
	ColSpeedTW,
	ColBFScale,
}

// OptionalColumns are read when present and ignored otherwise
var OptionalColumns = []string{
	ColIsSpeedDropValid,
	ColIsDeltaPDOnSpeedValid,
	ColISOCorrectedFOC,
	ColMEFOCIdealPD,
	ColMEFOCIdealPDCor,
	ColLCVCorrectedFOC,
}

// SpeedMetric selects which speed column drives the analysis
type SpeedMetric string

const (
	SpeedOverGround   SpeedMetric = ColSpeedOG
	SpeedThroughWater SpeedMetric = ColSpeedTW
)

// ParseSpeedMetric accepts the column name in any case, or the short forms "og" and "tw".
// An empty string yields SpeedOverGround.
func ParseSpeedMetric(s string) (SpeedMetric, error) {
	switch strings.ToLower(s) {
	case "", "speedog", "og", "sog":
		return SpeedOverGround, nil
	case "speedtw", "tw", "stw":
		return SpeedThroughWater, nil
	}
	return "", fmt.Errorf("unknown speed metric %q (want SpeedOG or SpeedTW)", s)
}

// Observation is one telemetry row.
type Observation struct {
	VesselID              int     `json:"vessel_id" msgpack:"vessel_id"`
	ShaftPower            float64 `json:"shaft_power_kw" msgpack:"shaft_power_kw"`
	RunningMinutes        float64 `json:"running_minutes" msgpack:"running_minutes"`
	MeanDraft             float64 `json:"mean_draft" msgpack:"mean_draft"`
	RelativeWindDirection float64 `json:"relative_wind_direction" msgpack:"relative_wind_direction"`
	SpeedOG               float64 `json:"speed_og" msgpack:"speed_og"`
	SpeedTW               float64 `json:"speed_tw" msgpack:"speed_tw"`
	BFScale               float64 `json:"bf_scale" msgpack:"bf_scale"`
	CorrectedFOC          float64 `json:"lcv_corrected_foc" msgpack:"lcv_corrected_foc"`
}

// Speed returns the observation's value for the given speed metric
func (o Observation) Speed(m SpeedMetric) float64 {
	if m == SpeedThroughWater {
		return o.SpeedTW
	}
	return o.SpeedOG
}

// Dataset is the loaded, read-only row set for a single analysis pass.
type Dataset struct {
	Observations []Observation
	// HasFOC is false when any part of the source lacked fuel data; fuel rates are then unavailable.
	HasFOC bool
}

// Len returns the number of observations
func (d *Dataset) Len() int {
	return len(d.Observations)
}

// VesselIDs returns the distinct vessel IDs in ascending order
func (d *Dataset) VesselIDs() []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, o := range d.Observations {
		if _, ok := seen[o.VesselID]; !ok {
			seen[o.VesselID] = struct{}{}
			ids = append(ids, o.VesselID)
		}
	}
	sort.Ints(ids)
	return ids
}

// Span returns the observed min/max of a column across the whole dataset.
// NaN values are skipped. An empty dataset yields a zero Range.
func (d *Dataset) Span(value func(Observation) float64) Range {
	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, o := range d.Observations {
		v := value(o)
		if math.IsNaN(v) {
			continue
		}
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	if math.IsInf(r.Min, 1) {
		return Range{}
	}
	return r
}

// TotalRunningDays sums running time for one vessel over the whole dataset
func (d *Dataset) TotalRunningDays(vesselID int) float64 {
	var minutes float64
	for _, o := range d.Observations {
		if o.VesselID == vesselID {
			minutes += o.RunningMinutes
		}
	}
	return minutes / 60 / 24
}

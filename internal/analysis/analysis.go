// Package analysis implements the power/speed pipeline: filtering, per-vessel
// trend fitting and running-time weighted aggregation by speed bin.
//
// Every function here is pure. Nothing is cached between calls, so each
// request recomputes every derived value from the dataset it is given.
package analysis

import (
	"fmt"

	"github.com/chrissnell/powerspeed/internal/types"
)

// Status describes the outcome of a pass
type Status string

const (
	StatusOK             Status = "ok"
	StatusEmptySelection Status = "empty_selection"
	StatusNoMatchingRows Status = "no_matching_rows"
)

// Messages shown for the non-fatal conditions
const (
	MessageEmptySelection = "Please select at least one vessel to display the plot."
	MessageNoMatchingRows = "No data available for the selected filters. Please adjust your filter criteria."
)

// Point is one scatter point
type Point struct {
	Speed float64 `json:"speed" msgpack:"speed"`
	Power float64 `json:"power" msgpack:"power"`
}

// VesselSeries is the chart data for one selected vessel: its scatter points
// and trend line share a legend group.
type VesselSeries struct {
	VesselID   int     `json:"vessel_id" msgpack:"vessel_id"`
	VesselName string  `json:"vessel_name" msgpack:"vessel_name"`
	Points     []Point `json:"points" msgpack:"points"`
	Trend      Trend   `json:"trend" msgpack:"trend"`
}

// Warning is a per-vessel, non-fatal problem
type Warning struct {
	VesselID   int    `json:"vessel_id" msgpack:"vessel_id"`
	VesselName string `json:"vessel_name" msgpack:"vessel_name"`
	Message    string `json:"message" msgpack:"message"`
}

// Result is the full output of one analysis pass
type Result struct {
	Status   Status               `json:"status" msgpack:"status"`
	Message  string               `json:"message,omitempty" msgpack:"message,omitempty"`
	Criteria types.FilterCriteria `json:"criteria" msgpack:"criteria"`
	Rows     int                  `json:"rows" msgpack:"rows"`
	Series   []VesselSeries       `json:"series" msgpack:"series"`
	Bins     []SpeedBin           `json:"bins" msgpack:"bins"`
	Warnings []Warning            `json:"warnings,omitempty" msgpack:"warnings,omitempty"`
	HasFOC   bool                 `json:"has_fuel" msgpack:"has_fuel"`
}

// Run executes Filter -> FitTrend -> Aggregate over the dataset.
// The criteria must already be validated.
func Run(ds *types.Dataset, c types.FilterCriteria, names types.VesselDirectory) *Result {
	res := &Result{
		Criteria: c,
		HasFOC:   ds.HasFOC,
		Series:   []VesselSeries{},
		Bins:     []SpeedBin{},
	}

	if len(c.Vessels) == 0 {
		res.Status = StatusEmptySelection
		res.Message = MessageEmptySelection
		return res
	}

	filtered := Filter(ds.Observations, c)
	res.Rows = len(filtered)
	if len(filtered) == 0 {
		res.Status = StatusNoMatchingRows
		res.Message = MessageNoMatchingRows
		return res
	}
	res.Status = StatusOK

	groups := byVessel(filtered)
	for _, id := range uniqueOrdered(c.Vessels) {
		rows := groups[id]
		if len(rows) == 0 {
			continue
		}
		name := names.Name(id)

		sorted := sortedBySpeed(rows, c.Metric)
		vs := VesselSeries{
			VesselID:   id,
			VesselName: name,
			Points:     make([]Point, len(sorted)),
		}
		speeds := make([]float64, len(sorted))
		powers := make([]float64, len(sorted))
		for i, o := range sorted {
			speeds[i] = o.Speed(c.Metric)
			powers[i] = o.ShaftPower
			vs.Points[i] = Point{Speed: speeds[i], Power: powers[i]}
		}

		vs.Trend = FitTrend(speeds, powers)
		if !vs.Trend.Available() && vs.Trend.Reason.Warns() {
			res.Warnings = append(res.Warnings, Warning{
				VesselID:   id,
				VesselName: name,
				Message:    fmt.Sprintf("Could not fit polynomial for %s - insufficient data variation (%s)", name, vs.Trend.Detail),
			})
		}
		res.Series = append(res.Series, vs)
	}

	res.Bins = Aggregate(filtered, c.Metric, uniqueOrdered(c.Vessels), names, ds.HasFOC)
	return res
}

// uniqueOrdered drops repeated IDs, keeping the first occurrence
func uniqueOrdered(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/powerspeed/internal/types"
)

const (
	minutesPerDay = 24 * 60
)

// SpeedBinSummary is one vessel's aggregate over one speed bin
type SpeedBinSummary struct {
	VesselID          int     `json:"vessel_id" msgpack:"vessel_id"`
	VesselName        string  `json:"vessel_name" msgpack:"vessel_name"`
	Rows              int     `json:"rows" msgpack:"rows"`
	RunningMinutes    float64 `json:"running_minutes" msgpack:"running_minutes"`
	TotalRunningDays  float64 `json:"total_running_days" msgpack:"total_running_days"`
	WeightedAvgPower  float64 `json:"weighted_avg_power_kw" msgpack:"weighted_avg_power_kw"`
	FuelRateMTPerDay  float64 `json:"fuel_rate_mt_per_day" msgpack:"fuel_rate_mt_per_day"`
	FuelRateAvailable bool    `json:"fuel_rate_available" msgpack:"fuel_rate_available"`
}

// SpeedBin is the half-open speed interval [Lo, Hi) and the vessels with running time in it
type SpeedBin struct {
	Lo        int               `json:"lo" msgpack:"lo"`
	Hi        int               `json:"hi" msgpack:"hi"`
	Rows      int               `json:"rows" msgpack:"rows"`
	Summaries []SpeedBinSummary `json:"summaries" msgpack:"summaries"`
	// Message is set when the bin has rows but no vessel with running time
	Message string `json:"message,omitempty" msgpack:"message,omitempty"`
}

// maxBinSpeed bounds the speeds that can be binned; anything beyond is a sentinel
// or corrupt value and cannot be expressed as an integer bin edge.
const maxBinSpeed = 1 << 31

// binKey returns the lower edge of the unit bin holding s. A speed equal to an
// integer lands in the bin starting at that integer, so the maximum is always covered.
func binKey(s float64) (int, bool) {
	if math.IsNaN(s) || math.Abs(s) >= maxBinSpeed {
		return 0, false
	}
	return int(math.Floor(s)), true
}

// Bins returns the occupied unit-width bins [k, k+1) in ascending order, where
// k runs over floor(speed) of the given speeds. Together they span
// [floor(min), floor(max)+1); bins holding no speed are left out.
func Bins(speeds []float64) [][2]int {
	seen := make(map[int]struct{})
	for _, s := range speeds {
		if k, ok := binKey(s); ok {
			seen[k] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	keys := make([]int, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	bins := make([][2]int, len(keys))
	for i, k := range keys {
		bins[i] = [2]int{k, k + 1}
	}
	return bins
}

// Aggregate bins filtered observations by the chosen speed metric and computes
// running-time weighted statistics per vessel. Rows are grouped in one pass, so
// the work is proportional to the row count rather than the speed span. Bins
// without any rows do not appear; vessels with no rows or no running time in a
// bin are omitted from that bin. Vessel order within a bin follows order.
func Aggregate(obs []types.Observation, metric types.SpeedMetric, order []int, names types.VesselDirectory, hasFOC bool) []SpeedBin {
	type group struct {
		rows      int
		perVessel map[int][]types.Observation
	}
	groups := make(map[int]*group)
	var keys []int
	for _, o := range obs {
		k, ok := binKey(o.Speed(metric))
		if !ok {
			continue
		}
		g := groups[k]
		if g == nil {
			g = &group{perVessel: make(map[int][]types.Observation)}
			groups[k] = g
			keys = append(keys, k)
		}
		g.perVessel[o.VesselID] = append(g.perVessel[o.VesselID], o)
		g.rows++
	}
	sort.Ints(keys)

	out := make([]SpeedBin, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		bin := SpeedBin{Lo: k, Hi: k + 1, Rows: g.rows, Summaries: []SpeedBinSummary{}}
		for _, id := range order {
			if s, ok := summarize(g.perVessel[id], hasFOC); ok {
				s.VesselID = id
				s.VesselName = names.Name(id)
				bin.Summaries = append(bin.Summaries, s)
			}
		}
		if len(bin.Summaries) == 0 {
			bin.Message = fmt.Sprintf("No data available for any vessels in the %d-%d knots range.", bin.Lo, bin.Hi)
		}
		out = append(out, bin)
	}
	return out
}

// summarize computes one vessel's bin statistics. ok is false when the vessel
// has no rows or zero total running time.
func summarize(obs []types.Observation, hasFOC bool) (SpeedBinSummary, bool) {
	if len(obs) == 0 {
		return SpeedBinSummary{}, false
	}

	power := make([]float64, len(obs))
	minutes := make([]float64, len(obs))
	fuel := make([]float64, len(obs))
	for i, o := range obs {
		power[i] = o.ShaftPower
		minutes[i] = o.RunningMinutes
		fuel[i] = o.CorrectedFOC
	}

	w := floats.Sum(minutes)
	if w == 0 {
		return SpeedBinSummary{}, false
	}

	s := SpeedBinSummary{
		Rows:             len(obs),
		RunningMinutes:   w,
		TotalRunningDays: w / 60 / 24,
		// Σ(power·minutes) / Σminutes
		WeightedAvgPower: stat.Mean(power, minutes),
	}
	if hasFOC {
		s.FuelRateMTPerDay = floats.Sum(fuel) / w * minutesPerDay
		s.FuelRateAvailable = true
	}
	return s, true
}

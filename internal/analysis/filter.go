package analysis

import (
	"sort"

	"github.com/chrissnell/powerspeed/internal/types"
)

// Filter returns the observations matching every criterion, in input order.
// The input slice is not modified.
func Filter(obs []types.Observation, c types.FilterCriteria) []types.Observation {
	if len(c.Vessels) == 0 {
		return nil
	}
	var out []types.Observation
	for _, o := range obs {
		if c.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

// byVessel splits filtered observations per vessel, preserving input order within each vessel
func byVessel(obs []types.Observation) map[int][]types.Observation {
	groups := make(map[int][]types.Observation)
	for _, o := range obs {
		groups[o.VesselID] = append(groups[o.VesselID], o)
	}
	return groups
}

// sortedBySpeed returns a copy of obs ordered by the metric. Equal speeds keep their input order.
func sortedBySpeed(obs []types.Observation, metric types.SpeedMetric) []types.Observation {
	out := make([]types.Observation, len(obs))
	copy(out, obs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Speed(metric) < out[j].Speed(metric)
	})
	return out
}

package types

import (
	"fmt"
	"math"
)

// Range is an inclusive [Min, Max] bound
type Range struct {
	Min float64 `json:"min" msgpack:"min"`
	Max float64 `json:"max" msgpack:"max"`
}

// Contains reports whether v lies within the inclusive bound. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Validate checks that the bound is well formed
func (r Range) Validate(name string) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return fmt.Errorf("%s: bound is not a number", name)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s: min %.2f is greater than max %.2f", name, r.Min, r.Max)
	}
	return nil
}

// FilterCriteria is the complete set of filters for one analysis pass. It is built
// fresh for every request and never mutated by the pipeline.
type FilterCriteria struct {
	Metric                SpeedMetric `json:"speed_metric" msgpack:"speed_metric"`
	Vessels               []int       `json:"vessels" msgpack:"vessels"`
	MeanDraft             Range       `json:"mean_draft" msgpack:"mean_draft"`
	RelativeWindDirection Range       `json:"relative_wind_direction" msgpack:"relative_wind_direction"`
	Speed                 Range       `json:"speed" msgpack:"speed"`
	BFScale               Range       `json:"bf_scale" msgpack:"bf_scale"`
}

// DefaultCriteria returns criteria spanning the full observed range of every filtered
// column, with the given vessel selection.
func DefaultCriteria(ds *Dataset, metric SpeedMetric, vessels []int) FilterCriteria {
	return FilterCriteria{
		Metric:                metric,
		Vessels:               vessels,
		MeanDraft:             ds.Span(func(o Observation) float64 { return o.MeanDraft }),
		RelativeWindDirection: ds.Span(func(o Observation) float64 { return o.RelativeWindDirection }),
		Speed:                 ds.Span(func(o Observation) float64 { return o.Speed(metric) }),
		BFScale:               ds.Span(func(o Observation) float64 { return o.BFScale }),
	}
}

// Validate checks every bound
func (c FilterCriteria) Validate() error {
	if c.Metric != SpeedOverGround && c.Metric != SpeedThroughWater {
		return fmt.Errorf("unknown speed metric %q", c.Metric)
	}
	bounds := []struct {
		name string
		r    Range
	}{
		{ColMeanDraft, c.MeanDraft},
		{ColRelativeWindDirection, c.RelativeWindDirection},
		{string(c.Metric), c.Speed},
		{ColBFScale, c.BFScale},
	}
	for _, b := range bounds {
		if err := b.r.Validate(b.name); err != nil {
			return err
		}
	}
	return nil
}

// Selected reports whether the vessel is part of the selection
func (c FilterCriteria) Selected(vesselID int) bool {
	for _, id := range c.Vessels {
		if id == vesselID {
			return true
		}
	}
	return false
}

// Matches reports whether an observation passes every range filter and the vessel filter
func (c FilterCriteria) Matches(o Observation) bool {
	return c.Selected(o.VesselID) &&
		c.MeanDraft.Contains(o.MeanDraft) &&
		c.RelativeWindDirection.Contains(o.RelativeWindDirection) &&
		c.Speed.Contains(o.Speed(c.Metric)) &&
		c.BFScale.Contains(o.BFScale)
}

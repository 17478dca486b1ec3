// Package request turns query parameters into load options and filter criteria.
// The HTTP API and the report CLI share it so both accept the same parameters.
package request

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/chrissnell/powerspeed/internal/source"
	"github.com/chrissnell/powerspeed/internal/types"
	"github.com/chrissnell/powerspeed/pkg/config"
)

// rangeParams maps each filter bound to its query parameter prefix
var rangeParams = []struct {
	prefix string
	field  func(c *types.FilterCriteria) *types.Range
}{
	{"draft", func(c *types.FilterCriteria) *types.Range { return &c.MeanDraft }},
	{"wind", func(c *types.FilterCriteria) *types.Range { return &c.RelativeWindDirection }},
	{"speed", func(c *types.FilterCriteria) *types.Range { return &c.Speed }},
	{"bf", func(c *types.FilterCriteria) *types.Range { return &c.BFScale }},
}

// ParseOptions reads validity=... and correct_foc=..., falling back to the configured defaults
func ParseOptions(q url.Values, defaults config.AnalysisData) (source.Options, error) {
	opts := source.Options{
		ApplyValidity: defaults.ApplyValidityFilter,
		CorrectFOC:    defaults.CorrectFOC,
	}
	if v := q.Get("validity"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid validity value %q", v)
		}
		opts.ApplyValidity = b
	}
	if v := q.Get("correct_foc"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid correct_foc value %q", v)
		}
		opts.CorrectFOC = b
	}
	return opts, nil
}

// ParseMetric reads speed=..., falling back to the configured default
func ParseMetric(q url.Values, defaults config.AnalysisData) (types.SpeedMetric, error) {
	if v := q.Get("speed"); v != "" {
		return types.ParseSpeedMetric(v)
	}
	return types.ParseSpeedMetric(defaults.DefaultSpeedMetric)
}

// DefaultSelection returns the first n vessels by ID
func DefaultSelection(ds *types.Dataset, n int) []int {
	ids := ds.VesselIDs()
	if n > 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// ParseVessels reads vessels=1023,1005. A present but empty parameter is an
// empty selection; an absent one selects the default vessels.
func ParseVessels(q url.Values, ds *types.Dataset, defaults config.AnalysisData) ([]int, error) {
	raw, ok := q["vessels"]
	if !ok {
		return DefaultSelection(ds, defaults.DefaultVesselCount), nil
	}
	ids := []int{}
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid vessel id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ParseCriteria starts from the full observed range of every column and
// narrows each bound given as <prefix>_min / <prefix>_max.
func ParseCriteria(q url.Values, ds *types.Dataset, defaults config.AnalysisData) (types.FilterCriteria, error) {
	metric, err := ParseMetric(q, defaults)
	if err != nil {
		return types.FilterCriteria{}, err
	}
	vessels, err := ParseVessels(q, ds, defaults)
	if err != nil {
		return types.FilterCriteria{}, err
	}

	c := types.DefaultCriteria(ds, metric, vessels)
	for _, p := range rangeParams {
		r := p.field(&c)
		if err := parseBound(q, p.prefix+"_min", &r.Min); err != nil {
			return c, err
		}
		if err := parseBound(q, p.prefix+"_max", &r.Max); err != nil {
			return c, err
		}
	}
	return c, c.Validate()
}

func parseBound(q url.Values, key string, dst *float64) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s value %q", key, v)
	}
	*dst = f
	return nil
}

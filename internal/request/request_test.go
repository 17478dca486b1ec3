package request

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/chrissnell/powerspeed/internal/types"
	"github.com/chrissnell/powerspeed/pkg/config"
)

func dataset() *types.Dataset {
	return &types.Dataset{Observations: []types.Observation{
		{VesselID: 1023, MeanDraft: 7, RelativeWindDirection: 10, SpeedOG: 9, SpeedTW: 8.5, BFScale: 1},
		{VesselID: 1004, MeanDraft: 9, RelativeWindDirection: 180, SpeedOG: 13, SpeedTW: 12, BFScale: 5},
		{VesselID: 1005, MeanDraft: 8, RelativeWindDirection: 90, SpeedOG: 11, SpeedTW: 10, BFScale: 3},
		{VesselID: 1017, MeanDraft: 8, RelativeWindDirection: 90, SpeedOG: 11, SpeedTW: 10, BFScale: 3},
	}}
}

var defaults = config.AnalysisData{DefaultSpeedMetric: "SpeedOG", DefaultVesselCount: 3, ApplyValidityFilter: true}

func TestParseVessels(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"absent selects the first three", "", []int{1004, 1005, 1017}},
		{"present but empty", "vessels=", []int{}},
		{"list", "vessels=1023,1005", []int{1023, 1005}},
		{"repeated parameter", "vessels=1023&vessels=1017", []int{1023, 1017}},
		{"spaces and trailing comma", "vessels=1023, 1005,", []int{1023, 1005}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseVessels(q, dataset(), defaults)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	q, _ := url.ParseQuery("vessels=1023,x")
	if _, err := ParseVessels(q, dataset(), defaults); err == nil {
		t.Error("expected an error for a non-numeric ID")
	}
}

func TestParseCriteria(t *testing.T) {
	q, _ := url.ParseQuery("speed=SpeedTW&draft_min=7.5&bf_max=4&vessels=1005")
	c, err := ParseCriteria(q, dataset(), defaults)
	if err != nil {
		t.Fatal(err)
	}
	if c.Metric != types.SpeedThroughWater {
		t.Errorf("metric = %q", c.Metric)
	}
	if c.MeanDraft != (types.Range{Min: 7.5, Max: 9}) {
		t.Errorf("draft = %+v", c.MeanDraft)
	}
	if c.BFScale != (types.Range{Min: 1, Max: 4}) {
		t.Errorf("bf = %+v", c.BFScale)
	}
	if c.Speed != (types.Range{Min: 8.5, Max: 12}) {
		t.Errorf("through-water speed span = %+v", c.Speed)
	}
	if c.RelativeWindDirection != (types.Range{Min: 10, Max: 180}) {
		t.Errorf("wind = %+v", c.RelativeWindDirection)
	}

	for _, bad := range []string{"draft_min=9.5&draft_max=8", "wind_min=abc", "speed=warp"} {
		q, _ := url.ParseQuery(bad)
		if _, err := ParseCriteria(q, dataset(), defaults); err == nil {
			t.Errorf("%s: expected an error", bad)
		}
	}
}

func TestParseOptions(t *testing.T) {
	q, _ := url.ParseQuery("")
	opts, err := ParseOptions(q, defaults)
	if err != nil || !opts.ApplyValidity || opts.CorrectFOC {
		t.Errorf("defaults: %+v, %v", opts, err)
	}

	q, _ = url.ParseQuery("validity=false&correct_foc=true")
	opts, err = ParseOptions(q, defaults)
	if err != nil || opts.ApplyValidity || !opts.CorrectFOC {
		t.Errorf("overrides: %+v, %v", opts, err)
	}

	q, _ = url.ParseQuery("correct_foc=perhaps")
	if _, err := ParseOptions(q, defaults); err == nil {
		t.Error("expected an error")
	}
}

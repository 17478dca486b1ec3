package chart

import (
	"bytes"
	"errors"
	"testing"

	"github.com/chrissnell/powerspeed/internal/analysis"
	"github.com/chrissnell/powerspeed/internal/types"
)

func TestPalette(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		wantLen    int
		firstScat  string
		firstTrend string
	}{
		{"none", 0, 0, "", ""},
		{"base palette", 3, 3, "#E85252", "#E70E0E"},
		{"full base palette", 12, 12, "#E85252", "#E70E0E"},
		// Set3 #8DD3C7 darkened by 40 per channel
		{"extended palette", 13, 13, "#8DD3C7", "#65AB9F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Palette(tt.n)
			if len(p) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(p), tt.wantLen)
			}
			if tt.wantLen == 0 {
				return
			}
			if got := Hex(p[0].Scatter); got != tt.firstScat {
				t.Errorf("scatter = %s, want %s", got, tt.firstScat)
			}
			if got := Hex(p[0].Trend); got != tt.firstTrend {
				t.Errorf("trend = %s, want %s", got, tt.firstTrend)
			}
		})
	}
}

func TestPaletteDistinctWithinBase(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range Palette(12) {
		h := Hex(p.Scatter)
		if seen[h] {
			t.Errorf("duplicate scatter colour %s", h)
		}
		seen[h] = true
	}
}

func TestDarkenClampsAtZero(t *testing.T) {
	c := darken(Palette(1)[0].Trend, 40) // #E70E0E
	if c.R != 0xE7-40 || c.G != 0 || c.B != 0 {
		t.Errorf("darken = %s, want channel values clamped at zero", Hex(c))
	}
}

func TestRender(t *testing.T) {
	res := &analysis.Result{
		Status:   analysis.StatusOK,
		Criteria: types.FilterCriteria{Metric: types.SpeedOverGround},
		Series: []analysis.VesselSeries{
			{
				VesselID:   1005,
				VesselName: "PISCES",
				Points:     []analysis.Point{{Speed: 10, Power: 1000}, {Speed: 11, Power: 1300}, {Speed: 12, Power: 1700}, {Speed: 13, Power: 2300}},
			},
			{
				VesselID:   1017,
				VesselName: "CETUS",
				Points:     []analysis.Point{{Speed: 11.5, Power: 1400}},
			},
		},
	}
	speeds := []float64{10, 11, 12, 13}
	powers := []float64{1000, 1300, 1700, 2300}
	res.Series[0].Trend = analysis.FitTrend(speeds, powers)

	var buf bytes.Buffer
	if err := Render(&buf, res, Options{Width: 640, Height: 480}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Errorf("output is not a PNG")
	}
}

func TestRenderNothingToPlot(t *testing.T) {
	res := &analysis.Result{Status: analysis.StatusEmptySelection}
	var buf bytes.Buffer
	if err := Render(&buf, res, Options{}); !errors.Is(err, ErrNothingToPlot) {
		t.Errorf("err = %v, want ErrNothingToPlot", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written")
	}
}

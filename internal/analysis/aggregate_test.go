package analysis

import (
	"math"
	"reflect"
	"testing"

	"github.com/chrissnell/powerspeed/internal/types"
)

func obs(vessel int, speed, power, minutes, foc float64) types.Observation {
	return types.Observation{
		VesselID:              vessel,
		ShaftPower:            power,
		RunningMinutes:        minutes,
		MeanDraft:             10,
		RelativeWindDirection: 90,
		SpeedOG:               speed,
		SpeedTW:               speed - 0.5,
		BFScale:               3,
		CorrectedFOC:          foc,
	}
}

func TestBins(t *testing.T) {
	tests := []struct {
		name   string
		speeds []float64
		want   [][2]int
	}{
		{"empty", nil, nil},
		{"fractional range", []float64{10.2, 11.4, 12.7}, [][2]int{{10, 11}, {11, 12}, {12, 13}}},
		{"unoccupied bin left out", []float64{10.2, 12.7}, [][2]int{{10, 11}, {12, 13}}},
		{"integer max", []float64{10.5, 11.2, 12}, [][2]int{{10, 11}, {11, 12}, {12, 13}}},
		{"single integer speed", []float64{10, 10}, [][2]int{{10, 11}}},
		{"single fractional speed", []float64{9.5}, [][2]int{{9, 10}}},
		{"sentinel speed", []float64{9.5, 9999}, [][2]int{{9, 10}, {9999, 10000}}},
		{"unbinnable values", []float64{math.NaN(), math.Inf(1), 1e300}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bins(tt.speeds); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bins(%v) = %v, want %v", tt.speeds, got, tt.want)
			}
		})
	}
}

func TestAggregateWeightedSummary(t *testing.T) {
	rows := []types.Observation{
		obs(1005, 10, 1000, 60, 1.0),
		obs(1005, 10, 1200, 60, 1.2),
	}
	names := types.NewVesselDirectory(nil)

	bins := Aggregate(rows, types.SpeedOverGround, []int{1005}, names, true)
	if len(bins) != 1 {
		t.Fatalf("got %d bins, want 1", len(bins))
	}
	b := bins[0]
	if b.Lo != 10 || b.Hi != 11 || b.Rows != 2 {
		t.Errorf("bin = [%d, %d) with %d rows, want [10, 11) with 2 rows", b.Lo, b.Hi, b.Rows)
	}
	if len(b.Summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(b.Summaries))
	}

	s := b.Summaries[0]
	if s.VesselName != "PISCES" {
		t.Errorf("vessel name = %q, want PISCES", s.VesselName)
	}
	if math.Abs(s.WeightedAvgPower-1100) > 1e-9 {
		t.Errorf("weighted power = %.4f, want 1100", s.WeightedAvgPower)
	}
	if math.Abs(s.TotalRunningDays-0.0833) > 1e-4 {
		t.Errorf("running days = %.4f, want 0.0833", s.TotalRunningDays)
	}
	if !s.FuelRateAvailable || math.Abs(s.FuelRateMTPerDay-26.4) > 1e-9 {
		t.Errorf("fuel rate = %.4f (available %v), want 26.4", s.FuelRateMTPerDay, s.FuelRateAvailable)
	}
}

func TestAggregateSingleRowKeepsPower(t *testing.T) {
	rows := []types.Observation{obs(7, 12.3, 1234.5, 45, 0.8)}
	bins := Aggregate(rows, types.SpeedOverGround, []int{7}, types.VesselDirectory{}, true)
	if len(bins) != 1 || len(bins[0].Summaries) != 1 {
		t.Fatalf("unexpected bins: %+v", bins)
	}
	s := bins[0].Summaries[0]
	if math.Abs(s.WeightedAvgPower-1234.5) > 1e-9 {
		t.Errorf("weighted power = %.6f, want 1234.5", s.WeightedAvgPower)
	}
	if s.VesselName != "Unknown_7" {
		t.Errorf("vessel name = %q, want Unknown_7", s.VesselName)
	}
}

func TestAggregateOmissions(t *testing.T) {
	rows := []types.Observation{
		obs(1, 10.2, 1000, 60, 1),
		obs(2, 10.4, 1500, 0, 1), // no running time
		obs(1, 12.5, 1800, 30, 1),
	}
	names := types.VesselDirectory{1: "A", 2: "B"}

	bins := Aggregate(rows, types.SpeedOverGround, []int{2, 1}, names, false)

	// [11, 12) has no rows and is skipped
	if len(bins) != 2 {
		t.Fatalf("got %d bins, want 2: %+v", len(bins), bins)
	}
	if bins[0].Lo != 10 || bins[1].Lo != 12 {
		t.Errorf("bins start at %d and %d, want 10 and 12", bins[0].Lo, bins[1].Lo)
	}

	first := bins[0].Summaries
	if len(first) != 1 || first[0].VesselID != 1 {
		t.Errorf("vessel with zero running time should be omitted, got %+v", first)
	}
	for _, b := range bins {
		for _, s := range b.Summaries {
			if s.FuelRateAvailable {
				t.Errorf("fuel rate should be unavailable without fuel data")
			}
		}
	}
}

func TestAggregateBinWithOnlyIdleRows(t *testing.T) {
	rows := []types.Observation{
		obs(1, 10.2, 1000, 0, 1),
		obs(1, 11.6, 1100, 10, 1),
	}
	bins := Aggregate(rows, types.SpeedOverGround, []int{1}, types.VesselDirectory{}, true)
	if len(bins) != 2 {
		t.Fatalf("got %d bins, want 2", len(bins))
	}
	if bins[0].Summaries == nil || len(bins[0].Summaries) != 0 {
		t.Errorf("first bin should carry an empty summary list, got %+v", bins[0].Summaries)
	}
	if bins[0].Message != "No data available for any vessels in the 10-11 knots range." {
		t.Errorf("message = %q", bins[0].Message)
	}
	if bins[1].Message != "" {
		t.Errorf("populated bin should have no message, got %q", bins[1].Message)
	}
}

func TestAggregateUsesSelectedMetric(t *testing.T) {
	rows := []types.Observation{obs(1, 10.2, 1000, 60, 1)}
	bins := Aggregate(rows, types.SpeedThroughWater, []int{1}, types.VesselDirectory{}, true)
	if len(bins) != 1 || bins[0].Lo != 9 {
		t.Errorf("through-water speed 9.7 should land in [9, 10), got %+v", bins)
	}
}

func TestRunWorkedScenario(t *testing.T) {
	ds := &types.Dataset{HasFOC: true, Observations: []types.Observation{
		obs(1005, 10, 1000, 60, 1.0),
		obs(1005, 10, 1200, 60, 1.2),
	}}
	res := Run(ds, types.DefaultCriteria(ds, types.SpeedOverGround, []int{1005}), types.NewVesselDirectory(nil))
	if res.Status != StatusOK {
		t.Fatalf("status = %q", res.Status)
	}
	if len(res.Bins) != 1 || res.Bins[0].Lo != 10 || len(res.Bins[0].Summaries) != 1 {
		t.Fatalf("bins = %+v, want a single [10, 11) bin", res.Bins)
	}
	s := res.Bins[0].Summaries[0]
	if math.Abs(s.WeightedAvgPower-1100) > 1e-9 || math.Abs(s.TotalRunningDays-0.0833) > 1e-4 || math.Abs(s.FuelRateMTPerDay-26.4) > 1e-9 {
		t.Errorf("summary = %+v, want 1100 kW, 0.0833 days, 26.4 MT/day", s)
	}

	_, rows := res.Table()
	want := []string{"10-11", "PISCES", "0.08", "1100.00", "26.400"}
	if len(rows) != 1 || !reflect.DeepEqual(rows[0], want) {
		t.Errorf("table rows = %q, want %q", rows, want)
	}
}

func TestAggregateOutlierSpeed(t *testing.T) {
	rows := []types.Observation{
		obs(1, 10.2, 1000, 60, 1),
		obs(1, 9999, 1000, 60, 1),
	}
	bins := Aggregate(rows, types.SpeedOverGround, []int{1}, types.VesselDirectory{}, true)
	if len(bins) != 2 || bins[0].Lo != 10 || bins[1].Lo != 9999 {
		t.Errorf("bins = %+v, want [10, 11) and [9999, 10000)", bins)
	}
}

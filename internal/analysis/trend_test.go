package analysis

import (
	"math"
	"testing"
)

func TestFitTrendAvailability(t *testing.T) {
	tests := []struct {
		name    string
		speeds  []float64
		powers  []float64
		reason  UnavailableReason
		warns   bool
		hasLine bool
	}{
		{
			name:   "no points",
			reason: ReasonInsufficientPoints,
		},
		{
			name:   "three points",
			speeds: []float64{10, 11, 12},
			powers: []float64{1000, 1200, 1500},
			reason: ReasonInsufficientPoints,
		},
		{
			name:    "four points",
			speeds:  []float64{10, 11, 12, 13},
			powers:  []float64{1000, 1200, 1500, 1900},
			hasLine: true,
		},
		{
			name:   "constant speed",
			speeds: []float64{12, 12, 12, 12, 12},
			powers: []float64{1000, 1100, 1050, 990, 1010},
			reason: ReasonDegenerate,
			warns:  true,
		},
		{
			name:   "three distinct speeds",
			speeds: []float64{10, 10, 11, 12, 12},
			powers: []float64{1000, 1010, 1200, 1500, 1490},
			reason: ReasonDegenerate,
			warns:  true,
		},
		{
			name:   "near-constant speed",
			speeds: []float64{12, 12.00001, 12.00002, 12.00003},
			powers: []float64{1000, 1100, 1050, 1200},
			reason: ReasonUnstable,
			warns:  true,
		},
		{
			name:   "speed jitter below resolution",
			speeds: []float64{12, 12 + 1e-7, 12 + 2e-7, 12 + 3e-7, 12 + 4e-7},
			powers: []float64{1000, 1100, 1050, 1200, 1010},
			reason: ReasonUnstable,
			warns:  true,
		},
		{
			name:    "narrow but real spread",
			speeds:  []float64{12, 12.1, 12.2, 12.3},
			powers:  []float64{1000, 1100, 1050, 1200},
			hasLine: true,
		},
		{
			name:   "mismatched lengths",
			speeds: []float64{10, 11, 12, 13},
			powers: []float64{1000, 1200},
			reason: ReasonUnstable,
			warns:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := FitTrend(tt.speeds, tt.powers)
			if tr.Available() != tt.hasLine {
				t.Fatalf("Available() = %v, want %v (reason %q: %s)", tr.Available(), tt.hasLine, tr.Reason, tr.Detail)
			}
			if tt.hasLine {
				return
			}
			if tr.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", tr.Reason, tt.reason)
			}
			if tr.Reason.Warns() != tt.warns {
				t.Errorf("Warns() = %v, want %v", tr.Reason.Warns(), tt.warns)
			}
		})
	}
}

func TestFitTrendRecoversCubic(t *testing.T) {
	// power = 50 - 3s + 2s² + 0.5s³
	want := [4]float64{50, -3, 2, 0.5}
	poly := func(s float64) float64 {
		return want[0] + want[1]*s + want[2]*s*s + want[3]*s*s*s
	}

	speeds := []float64{8, 9.5, 10, 11.25, 12, 13.5, 14, 15}
	powers := make([]float64, len(speeds))
	for i, s := range speeds {
		powers[i] = poly(s)
	}

	tr := FitTrend(speeds, powers)
	if !tr.Available() {
		t.Fatalf("expected a trend, got %q: %s", tr.Reason, tr.Detail)
	}

	for i, c := range tr.Curve.Coefficients {
		if math.Abs(c-want[i]) > 1e-6 {
			t.Errorf("coefficient %d = %.9f, want %.9f", i, c, want[i])
		}
	}

	if len(tr.Curve.X) != TrendSamples || len(tr.Curve.Y) != TrendSamples {
		t.Fatalf("trace has %d/%d samples, want %d", len(tr.Curve.X), len(tr.Curve.Y), TrendSamples)
	}
	if math.Abs(tr.Curve.X[0]-8) > 1e-9 || math.Abs(tr.Curve.X[TrendSamples-1]-15) > 1e-9 {
		t.Errorf("trace spans [%.2f, %.2f], want [8, 15]", tr.Curve.X[0], tr.Curve.X[TrendSamples-1])
	}
	for i, x := range tr.Curve.X {
		if math.Abs(tr.Curve.Y[i]-poly(x)) > 1e-6 {
			t.Errorf("Y[%d] at speed %.3f = %.6f, want %.6f", i, x, tr.Curve.Y[i], poly(x))
		}
	}
}

func TestFitTrendExactInterpolation(t *testing.T) {
	// Four distinct points determine the cubic exactly
	speeds := []float64{10, 11, 13, 16}
	powers := []float64{900, 1400, 1300, 2600}

	tr := FitTrend(speeds, powers)
	if !tr.Available() {
		t.Fatalf("expected a trend, got %q: %s", tr.Reason, tr.Detail)
	}
	for i, s := range speeds {
		if got := tr.Curve.Eval(s); math.Abs(got-powers[i]) > 1e-6 {
			t.Errorf("Eval(%.1f) = %.6f, want %.1f", s, got, powers[i])
		}
	}
}

func TestFitTrendNoisyDataStaysFinite(t *testing.T) {
	speeds := make([]float64, 200)
	powers := make([]float64, 200)
	for i := range speeds {
		speeds[i] = 5 + float64(i%40)*0.25
		powers[i] = 20*speeds[i]*speeds[i] + float64((i*37)%11) - 5
	}

	tr := FitTrend(speeds, powers)
	if !tr.Available() {
		t.Fatalf("expected a trend, got %q: %s", tr.Reason, tr.Detail)
	}
	for i, y := range tr.Curve.Y {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			t.Fatalf("Y[%d] is not finite", i)
		}
	}
}

func TestFitTrendNarrowSpreadStaysOnData(t *testing.T) {
	speeds := []float64{12, 12.05, 12.1, 12.15, 12.2}
	powers := []float64{1000, 1040, 1030, 1090, 1100}

	tr := FitTrend(speeds, powers)
	if !tr.Available() {
		t.Fatalf("expected a trend, got %q: %s", tr.Reason, tr.Detail)
	}
	// A least-squares cubic through nearby points cannot leave the data's envelope by much
	for i, y := range tr.Curve.Y {
		if y < 900 || y > 1200 {
			t.Errorf("Y[%d] at speed %.4f = %.3f, outside the data range", i, tr.Curve.X[i], y)
		}
	}
	for i, s := range speeds {
		if got := tr.Curve.Eval(s); math.Abs(got-powers[i]) > 50 {
			t.Errorf("Eval(%.2f) = %.3f, too far from %.0f", s, got, powers[i])
		}
	}
}

func TestBinomial(t *testing.T) {
	tests := []struct {
		n, k int
		want float64
	}{
		{0, 0, 1},
		{3, 0, 1},
		{3, 1, 3},
		{3, 2, 3},
		{3, 3, 1},
		{5, 2, 10},
	}
	for _, tt := range tests {
		if got := binomial(tt.n, tt.k); got != tt.want {
			t.Errorf("binomial(%d, %d) = %v, want %v", tt.n, tt.k, got, tt.want)
		}
	}
}

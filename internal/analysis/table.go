package analysis

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// TableHeader names the columns of the per-bin summary table
var TableHeader = []string{
	"Speed Range (knots)",
	"Vessel Name",
	"Total Running Days",
	"MEShaftPowerActual (kW)",
	"LCVCorrectedFOC (MT/day)",
}

// NotAvailable fills cells whose value could not be computed
const NotAvailable = "N/A"

// TableRow formats one summary the way the dashboard tables show it
func TableRow(b SpeedBin, s SpeedBinSummary) []string {
	fuel := NotAvailable
	if s.FuelRateAvailable {
		fuel = fmt.Sprintf("%.3f", s.FuelRateMTPerDay)
	}
	return []string{
		fmt.Sprintf("%d-%d", b.Lo, b.Hi),
		s.VesselName,
		humanize.FormatFloat("#,###.##", s.TotalRunningDays),
		fmt.Sprintf("%.2f", s.WeightedAvgPower),
		fuel,
	}
}

// Table flattens the bins into header plus rows. Bins without a summary do not
// contribute rows.
func (r *Result) Table() ([]string, [][]string) {
	var rows [][]string
	for _, b := range r.Bins {
		for _, s := range b.Summaries {
			rows = append(rows, TableRow(b, s))
		}
	}
	return TableHeader, rows
}

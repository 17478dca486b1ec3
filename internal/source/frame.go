package source

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/powerspeed/internal/types"
)

// frame is a column-addressed numeric table. Only known columns are kept;
// anything else in the source (document IDs, timestamps, free text) is dropped.
type frame struct {
	index map[string]int
	rows  [][]float64
}

func newFrame(header []string) *frame {
	f := &frame{index: make(map[string]int)}
	for _, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if !knownColumn(name) {
			continue
		}
		if _, dup := f.index[name]; dup {
			continue
		}
		f.index[name] = len(f.index)
	}
	return f
}

func knownColumn(name string) bool {
	for _, c := range types.RequiredColumns {
		if c == name {
			return true
		}
	}
	for _, c := range types.OptionalColumns {
		if c == name {
			return true
		}
	}
	return false
}

func (f *frame) has(col string) bool {
	_, ok := f.index[col]
	return ok
}

func (f *frame) value(row []float64, col string) float64 {
	i, ok := f.index[col]
	if !ok {
		return math.NaN()
	}
	return row[i]
}

// readCSVFrame parses a delimited file with a header row
func readCSVFrame(r io.Reader, delimiter rune) (*frame, error) {
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	// Map the kept frame columns back to CSV field positions
	f := newFrame(header)
	fieldFor := make([]int, len(f.index))
	for i := range fieldFor {
		fieldFor[i] = -1
	}
	for pos, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if i, ok := f.index[name]; ok && fieldFor[i] == -1 {
			fieldFor[i] = pos
		}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", line, err)
		}
		row := make([]float64, len(f.index))
		for i, pos := range fieldFor {
			if pos >= len(rec) {
				row[i] = math.NaN()
				continue
			}
			row[i] = parseNumber(rec[pos])
		}
		f.rows = append(f.rows, row)
	}
	return f, nil
}

// parseNumber converts a CSV cell to float64. Blank, NaN and non-numeric cells become NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "na":
		return math.NaN()
	case "true":
		return 1
	case "false":
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// readSQLFrame drains a result set of arbitrary shape into a frame
func readSQLFrame(rows *sql.Rows) (*frame, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	f := newFrame(cols)

	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		row := make([]float64, len(f.index))
		for i := range row {
			row[i] = math.NaN()
		}
		for pos, name := range cols {
			if i, ok := f.index[name]; ok {
				row[i] = toFloat(vals[pos])
			}
		}
		f.rows = append(f.rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return f, nil
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case []byte:
		return parseNumber(string(x))
	case string:
		return parseNumber(x)
	case time.Time:
		return math.NaN()
	}
	return parseNumber(fmt.Sprint(v))
}

// part is the typed result of converting one frame
type part struct {
	observations []types.Observation
	hasFOC       bool
	invalid      int // rows removed by the validity flags
	incomplete   int // rows missing a required value
}

// observations validates the frame's schema and converts it to typed rows,
// applying the validity filter and fuel correction according to opts.
func (f *frame) observations(name string, opts Options) (*part, error) {
	var missing []string
	for _, col := range types.RequiredColumns {
		if !f.has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, schemaMismatch(name, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	hasRaw := f.has(types.ColISOCorrectedFOC) && f.has(types.ColMEFOCIdealPD) && f.has(types.ColMEFOCIdealPDCor)
	var fuel func(row []float64) float64
	p := &part{hasFOC: true}
	switch {
	case opts.CorrectFOC && hasRaw:
		fuel = func(row []float64) float64 {
			return f.value(row, types.ColISOCorrectedFOC) + f.value(row, types.ColMEFOCIdealPD) - f.value(row, types.ColMEFOCIdealPDCor)
		}
	case f.has(types.ColLCVCorrectedFOC):
		fuel = func(row []float64) float64 { return f.value(row, types.ColLCVCorrectedFOC) }
	case !opts.CorrectFOC && f.has(types.ColISOCorrectedFOC):
		fuel = func(row []float64) float64 { return f.value(row, types.ColISOCorrectedFOC) }
	default:
		fuel = func([]float64) float64 { return 0 }
		p.hasFOC = false
	}

	var flags []string
	if opts.ApplyValidity {
		for _, col := range []string{types.ColIsSpeedDropValid, types.ColIsDeltaPDOnSpeedValid} {
			if f.has(col) {
				flags = append(flags, col)
			}
		}
	}

	p.observations = make([]types.Observation, 0, len(f.rows))
rows:
	for _, row := range f.rows {
		for _, col := range flags {
			if f.value(row, col) != 1 {
				p.invalid++
				continue rows
			}
		}
		for _, col := range types.RequiredColumns {
			if math.IsNaN(f.value(row, col)) {
				p.incomplete++
				continue rows
			}
		}

		foc := fuel(row)
		if math.IsNaN(foc) {
			// Missing fuel readings contribute nothing to the bin sums
			foc = 0
		}

		p.observations = append(p.observations, types.Observation{
			VesselID:              int(f.value(row, types.ColVesselID)),
			ShaftPower:            f.value(row, types.ColShaftPower),
			RunningMinutes:        f.value(row, types.ColRunningMinutes),
			MeanDraft:             f.value(row, types.ColMeanDraft),
			RelativeWindDirection: f.value(row, types.ColRelativeWindDirection),
			SpeedOG:               f.value(row, types.ColSpeedOG),
			SpeedTW:               f.value(row, types.ColSpeedTW),
			BFScale:               f.value(row, types.ColBFScale),
			CorrectedFOC:          foc,
		})
	}
	return p, nil
}

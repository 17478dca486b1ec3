// Package source loads vessel telemetry from flat files, databases and object
// storage into a validated, typed dataset.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/chrissnell/powerspeed/internal/log"
	"github.com/chrissnell/powerspeed/internal/types"
	"go.uber.org/zap"
)

// Source fetches one raw table
type Source interface {
	// Name identifies the source in logs and errors
	Name() string
	fetch(ctx context.Context) (*frame, error)
}

// Options selects the per-invocation load transformations. The validity filter
// and fuel correction are independent of each other.
type Options struct {
	// ApplyValidity keeps only rows with IsSpeedDropValid == 1 and IsDeltaPDOnSpeedValid == 1,
	// for each flag column the source actually carries.
	ApplyValidity bool
	// CorrectFOC derives LCVCorrectedFOC = ISOCorrectedFOC + MEFOCIdealPD - MEFOCIdealPDCor
	// when the raw columns are present.
	CorrectFOC bool
}

// Loader reads a primary source and an optional schema-identical secondary
// source, appending the secondary rows to the primary ones.
type Loader struct {
	Primary   Source
	Secondary Source
	logger    *zap.SugaredLogger
}

// NewLoader creates a loader. Secondary may be nil.
func NewLoader(primary, secondary Source) *Loader {
	return &Loader{
		Primary:   primary,
		Secondary: secondary,
		logger:    log.Named("source"),
	}
}

// Load reads every configured source. Any failure aborts the whole load; a
// *LoadError is always returned in that case.
func (l *Loader) Load(ctx context.Context, opts Options) (*types.Dataset, error) {
	if l.Primary == nil {
		return nil, loadFailure("(none)", errors.New("no data source configured"))
	}
	start := time.Now()

	// Fuel rates are only meaningful when every part carries fuel data; a part
	// without it would contribute zeros to the bin sums.
	ds := &types.Dataset{HasFOC: true}
	for _, src := range []Source{l.Primary, l.Secondary} {
		if src == nil {
			continue
		}
		p, err := l.loadPart(ctx, src, opts)
		if err != nil {
			return nil, err
		}
		ds.Observations = append(ds.Observations, p.observations...)
		if ds.HasFOC && !p.hasFOC && src == l.Secondary {
			l.logger.Warnw("secondary source lacks fuel columns; fuel rates disabled for the combined dataset",
				"primary", l.Primary.Name(), "secondary", src.Name())
		}
		ds.HasFOC = ds.HasFOC && p.hasFOC
	}

	l.logger.Infow("dataset loaded",
		"source", l.Primary.Name(),
		"rows", ds.Len(),
		"vessels", len(ds.VesselIDs()),
		"duration_ms", time.Since(start).Milliseconds())
	return ds, nil
}

func (l *Loader) loadPart(ctx context.Context, src Source, opts Options) (*part, error) {
	f, err := src.fetch(ctx)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, loadFailure(src.Name(), err)
	}

	p, err := f.observations(src.Name(), opts)
	if err != nil {
		return nil, err
	}

	if p.invalid > 0 || p.incomplete > 0 {
		l.logger.Infow("rows discarded",
			"source", src.Name(),
			"invalid_speed_drop_window", p.invalid,
			"missing_required_value", p.incomplete)
	}
	if !p.hasFOC {
		l.logger.Warnw("source carries no fuel consumption columns; fuel rates will be unavailable", "source", src.Name())
	}
	return p, nil
}

// Close releases any connection pools held by the sources
func (l *Loader) Close() error {
	var firstErr error
	for _, src := range []Source{l.Secondary, l.Primary} {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ctxErr converts a cancelled context into a load failure
func ctxErr(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return loadFailure(name, fmt.Errorf("load cancelled: %w", err))
	}
	return nil
}

package source

import (
	"errors"
	"fmt"
)

// Kind classifies a load failure
type Kind int

const (
	// KindSourceUnavailable means the file, table, bucket or server could not be reached or does not exist
	KindSourceUnavailable Kind = iota + 1
	// KindSchemaMismatch means the source is readable but lacks a required column
	KindSchemaMismatch
	// KindLoadFailure covers every other read or parse failure
	KindLoadFailure
)

func (k Kind) String() string {
	switch k {
	case KindSourceUnavailable:
		return "source_unavailable"
	case KindSchemaMismatch:
		return "schema_mismatch"
	case KindLoadFailure:
		return "load_failure"
	}
	return "unknown"
}

// LoadError is returned by every loader. No partial dataset accompanies it.
type LoadError struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case KindSourceUnavailable:
		return fmt.Sprintf("data source %s unavailable: %v", e.Source, e.Err)
	case KindSchemaMismatch:
		return fmt.Sprintf("data source %s has an unexpected schema: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("error loading data from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func unavailable(src string, err error) error {
	return &LoadError{Kind: KindSourceUnavailable, Source: src, Err: err}
}

func schemaMismatch(src string, err error) error {
	return &LoadError{Kind: KindSchemaMismatch, Source: src, Err: err}
}

func loadFailure(src string, err error) error {
	return &LoadError{Kind: KindLoadFailure, Source: src, Err: err}
}

// KindOf returns the kind of a load error, or zero when err is not one
func KindOf(err error) Kind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}

// IsSourceUnavailable reports whether err means the source is missing or unreachable
func IsSourceUnavailable(err error) bool {
	return KindOf(err) == KindSourceUnavailable
}

// IsSchemaMismatch reports whether err means a required column is missing
func IsSchemaMismatch(err error) bool {
	return KindOf(err) == KindSchemaMismatch
}

// IsLoadFailure reports whether err is any load failure other than an unavailable source.
// Schema mismatches are load failures.
func IsLoadFailure(err error) bool {
	k := KindOf(err)
	return k == KindLoadFailure || k == KindSchemaMismatch
}

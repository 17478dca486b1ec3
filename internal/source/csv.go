package source

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// CSVSource reads a local delimited file with a header row
type CSVSource struct {
	Path      string
	Delimiter rune
}

// NewCSVSource creates a comma-delimited file source
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, Delimiter: ','}
}

func (c *CSVSource) Name() string {
	return "csv:" + c.Path
}

func (c *CSVSource) fetch(ctx context.Context) (*frame, error) {
	if err := ctxErr(ctx, c.Name()); err != nil {
		return nil, err
	}

	fh, err := os.Open(c.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, unavailable(c.Name(), err)
		}
		return nil, loadFailure(c.Name(), err)
	}
	defer fh.Close()

	f, err := readCSVFrame(fh, c.Delimiter)
	if err != nil {
		return nil, loadFailure(c.Name(), err)
	}
	return f, nil
}

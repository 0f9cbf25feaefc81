// Package fileio reads and writes the pipeline's CSV and XLSX artifacts.
package fileio

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/acuity-research/patentlink/internal/model"
)

// ReadPatentCSV decodes the full patent registry into memory.
func ReadPatentCSV(path string) ([]model.PatentRecord, error) {
	return decodeCSV[model.PatentRecord](path)
}

// ReadCompustatCSV decodes the Compustat roster. Identifier columns
// stay strings so leading zeros survive.
func ReadCompustatCSV(path string) ([]model.CompustatRow, error) {
	return decodeCSV[model.CompustatRow](path)
}

func decodeCSV[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()

	dec, err := newDecoder(f)
	if err != nil {
		return nil, err
	}

	var out []T
	for {
		var rec T
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "csv: decode row")
		}
		out = append(out, rec)
	}
	return out, nil
}

// StreamPatentCSV decodes the registry row by row and sends records to
// a channel. Both channels are closed when processing completes.
func StreamPatentCSV(ctx context.Context, path string) (<-chan model.PatentRecord, <-chan error) {
	recCh := make(chan model.PatentRecord, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		f, err := os.Open(path)
		if err != nil {
			errCh <- eris.Wrap(err, "csv: open file")
			return
		}
		defer f.Close()

		dec, err := newDecoder(f)
		if err != nil {
			errCh <- err
			return
		}

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			var rec model.PatentRecord
			if err := dec.Decode(&rec); err == io.EOF {
				return
			} else if err != nil {
				errCh <- eris.Wrap(err, "csv: decode row")
				return
			}

			select {
			case recCh <- rec:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return recCh, errCh
}

// WriteCSV encodes typed rows with a header derived from csv tags.
func WriteCSV[T any](path string, rows []T) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "csv: marshal rows")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "csv: write file")
	}
	return nil
}

func newDecoder(r io.Reader) (*csvutil.Decoder, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	return dec, nil
}

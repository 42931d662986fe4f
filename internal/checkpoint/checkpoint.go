// Package checkpoint reads and writes the tab-separated files passed
// between pipeline stages.
//
// Checkpoint A holds observations: word, language, sense and an optional
// headword column. Checkpoint B holds weighted edges: node1_word,
// node1_sense, node2_word, node2_sense, weight.
package checkpoint

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

// readRows calls fn with every record of r and its 1-based line number.
func readRows(r io.Reader, fn func(line int, record []string) error) error {
	cr := newReader(r)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return &domain.RecordError{Line: perr.Line, Reason: perr.Err.Error()}
			}
			return fmt.Errorf("read tsv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

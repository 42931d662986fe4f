package checkpoint

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

// ObservationWriter writes checkpoint A rows. Self-anchored observations
// take three columns; anchored ones carry the headword in a fourth.
type ObservationWriter struct {
	cw   *csv.Writer
	rows int
}

// NewObservationWriter returns a writer on w. Call Flush when done.
func NewObservationWriter(w io.Writer) *ObservationWriter {
	return &ObservationWriter{cw: newWriter(w)}
}

// Write appends one observation.
func (w *ObservationWriter) Write(o domain.Observation) error {
	record := []string{o.Word, o.Language, o.Sense}
	if o.Headword != "" {
		record = append(record, o.Headword)
	}
	if err := w.cw.Write(record); err != nil {
		return fmt.Errorf("write observation: %w", err)
	}
	w.rows++
	return nil
}

// Flush writes buffered rows and reports any earlier write error.
func (w *ObservationWriter) Flush() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return fmt.Errorf("flush observations: %w", err)
	}
	return nil
}

// Rows returns the number of rows written so far.
func (w *ObservationWriter) Rows() int { return w.rows }

// ReadObservations parses checkpoint A from r, calling fn per row in file
// order, and returns the row count. A row with fewer than three or more
// than four columns fails with a *domain.RecordError.
func ReadObservations(r io.Reader, fn func(domain.Observation) error) (int, error) {
	rows := 0
	err := readRows(r, func(line int, record []string) error {
		if len(record) < 3 || len(record) > 4 {
			return &domain.RecordError{
				Line:   line,
				Reason: fmt.Sprintf("want 3 or 4 columns, got %d", len(record)),
			}
		}
		o := domain.Observation{Word: record[0], Language: record[1], Sense: record[2]}
		if len(record) == 4 {
			o.Headword = record[3]
		}
		if o.Language == "" {
			return &domain.RecordError{Line: line, Reason: "empty language"}
		}
		rows++
		return fn(o)
	})
	return rows, err
}

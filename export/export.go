// Package export writes review records as CSV, JSON or a rendered text
// table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pevans/dslreviews/review"
)

// Format names an output format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("format must be csv, json, or table")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Table is a list of records with a fixed column order.
type Table struct {
	Columns []string
	Rows    []review.Record
}

// NewTable returns a table of records using the extracted field columns.
func NewTable(records []review.Record) *Table {
	return &Table{
		Columns: append([]string(nil), review.Columns...),
		Rows:    records,
	}
}

// WithReviewDates returns a copy of the table with a review_date column
// resolved against now. Rows whose age cannot be resolved leave it empty.
func (t *Table) WithReviewDates(now time.Time) *Table {
	out := &Table{
		Columns: append(append([]string(nil), t.Columns...), review.FieldReviewDate),
		Rows:    make([]review.Record, len(t.Rows)),
	}
	for i, row := range t.Rows {
		dated := maps.Clone(row)
		if dated == nil {
			dated = review.Record{}
		}
		if date, ok := row.ReviewDate(now); ok {
			dated[review.FieldReviewDate] = date
		}
		out.Rows[i] = dated
	}
	return out
}

// Values returns row i in column order. Absent fields are empty strings.
func (t *Table) Values(i int) []string {
	values := make([]string, len(t.Columns))
	for j, col := range t.Columns {
		values[j] = t.Rows[i][col]
	}
	return values
}

// Write writes the table in format f.
func Write(w io.Writer, t *Table, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatTable:
		return WritePretty(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range t.Rows {
		if err := cw.Write(t.Values(i)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteJSON writes an array of objects holding only the fields present in
// each record.
func WriteJSON(w io.Writer, t *Table) error {
	rows := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		obj := map[string]string{}
		for _, col := range t.Columns {
			if v, ok := row[col]; ok {
				obj[col] = v
			}
		}
		rows[i] = obj
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WritePretty renders the table for a terminal.
func WritePretty(w io.Writer, t *Table) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	header := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	tw.AppendHeader(header)

	for i := range t.Rows {
		values := t.Values(i)
		row := make(table.Row, len(values))
		for j, v := range values {
			row[j] = v
		}
		tw.AppendRow(row)
	}

	tw.SetStyle(table.StyleRounded)
	tw.Render()
	return nil
}

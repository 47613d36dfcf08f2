// Package export orders columns, coerces every cell to text, and
// serializes the unified record set to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Fallou236/blackbox-cleaner/internal/model"
)

// Columns computes the output column ordering: the identifier column is
// forced to position 0, the rest keep their first-seen order.
func Columns(set model.RecordSet, idColumn string) []string {
	cols := make([]string, 0, len(set.Fields))
	if idColumn != "" && set.HasField(idColumn) {
		cols = append(cols, idColumn)
	}
	for _, f := range set.Fields {
		if f == idColumn {
			continue
		}
		cols = append(cols, f)
	}
	return cols
}

// Table coerces the record set into its final text-only form under the
// given column ordering. Values are expected to already be transformed;
// any raw leftovers render via their plain text representation, nulls as
// empty strings.
func Table(set model.RecordSet, cols []string) *model.OutputTable {
	table := &model.OutputTable{Columns: cols}
	for _, rec := range set.Records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = model.Text(rec[c])
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Write serializes the table as UTF-8 CSV with a header row.
func Write(w io.Writer, table *model.OutputTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, failing only on a write failure.
func WriteFile(path string, table *model.OutputTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, table); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

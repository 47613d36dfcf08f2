package model

// OutputTable is the final, fully text-coerced dataset: a fixed column
// ordering (identifier first) and one row per unified record. It holds no
// reference back to the input record sets.
type OutputTable struct {
	Columns []string
	Rows    [][]string
}

// Cell returns the value at the given row for the named column,
// or the empty string if the column is unknown.
func (t *OutputTable) Cell(row int, column string) string {
	for i, c := range t.Columns {
		if c == column {
			return t.Rows[row][i]
		}
	}
	return ""
}

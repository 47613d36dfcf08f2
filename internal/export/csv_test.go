package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fallou236/blackbox-cleaner/internal/model"
)

func sampleSet() model.RecordSet {
	s := model.RecordSet{Fields: []string{"amount", "user_id", "email"}}
	s.Records = append(s.Records,
		model.Record{"amount": "20.0", "user_id": "1", "email": "a****@x.com"},
		model.Record{"amount": "5.0", "user_id": "2", "email": nil},
	)
	return s
}

func TestColumnsForcesIdentifierFirst(t *testing.T) {
	cols := Columns(sampleSet(), "user_id")
	assert.Equal(t, []string{"user_id", "amount", "email"}, cols)
}

func TestColumnsUnknownIdentifierKeepsOrder(t *testing.T) {
	cols := Columns(sampleSet(), "missing")
	assert.Equal(t, []string{"amount", "user_id", "email"}, cols)
}

func TestTableCoercesEveryCellToText(t *testing.T) {
	table := Table(sampleSet(), []string{"user_id", "amount", "email"})

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", "20.0", "a****@x.com"}, table.Rows[0])
	// Nulls render as the empty string, not "nil".
	assert.Equal(t, []string{"2", "5.0", ""}, table.Rows[1])
}

func TestWriteProducesHeaderAndRows(t *testing.T) {
	table := Table(sampleSet(), Columns(sampleSet(), "user_id"))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"user_id", "amount", "email"}, records[0])
	assert.Equal(t, []string{"1", "20.0", "a****@x.com"}, records[1])
}

func TestWriteQuotesEmbeddedCommas(t *testing.T) {
	s := model.RecordSet{Fields: []string{"note"}}
	s.Records = append(s.Records, model.Record{"note": `hello, "world"`})
	table := Table(s, s.Fields)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `hello, "world"`, records[1][0])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	table := Table(sampleSet(), Columns(sampleSet(), "user_id"))

	require.NoError(t, WriteFile(path, table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "user_id,amount,email")
}

func TestWriteFileFailsOnBadPath(t *testing.T) {
	table := &model.OutputTable{Columns: []string{"a"}}
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.csv"), table)
	require.Error(t, err)
}

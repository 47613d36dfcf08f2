package service

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fallou236/blackbox-cleaner/internal/common"
)

type fixture struct {
	usersPath        string
	transactionsPath string
	outputPath       string
}

func newFixture(t *testing.T, users, transactions string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		usersPath:        filepath.Join(dir, "users.json"),
		transactionsPath: filepath.Join(dir, "transactions.json"),
		outputPath:       filepath.Join(dir, "out.csv"),
	}
	require.NoError(t, os.WriteFile(f.usersPath, []byte(users), 0o600))
	require.NoError(t, os.WriteFile(f.transactionsPath, []byte(transactions), 0o600))
	return f
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCleanHappyPath(t *testing.T) {
	f := newFixture(t,
		`[{"user_id": "1", "email": "ann@x.com"}]`,
		`[{"user_id": "1", "amount": 19.999}]`,
	)

	table, report, err := NewCleaner().Clean(context.Background(), f.usersPath, f.transactionsPath, f.outputPath)
	require.NoError(t, err)
	require.NotNil(t, table)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "user_id", report.JoinKey)
	assert.False(t, report.DegradedJoin)
	assert.Equal(t, "user_id", report.IDColumn)
	assert.Equal(t, "user_id", table.Columns[0])

	assert.Equal(t, "1", table.Cell(0, "user_id"))
	assert.Equal(t, "a****@x.com", table.Cell(0, "email"))
	assert.Equal(t, "20.0", table.Cell(0, "amount"))

	// The CSV on disk matches the returned table.
	records := readCSV(t, f.outputPath)
	require.Len(t, records, 2)
	assert.Equal(t, table.Columns, records[0])
	assert.Equal(t, table.Rows[0], records[1])
}

func TestCleanUnmatchedTransaction(t *testing.T) {
	f := newFixture(t,
		`[{"user_id": "1", "email": "ann@x.com"}]`,
		`[{"customer_id": "9", "amount": 5}]`,
	)

	table, report, err := NewCleaner().Clean(context.Background(), f.usersPath, f.transactionsPath, f.outputPath)
	require.NoError(t, err)

	assert.True(t, report.DegradedJoin)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "5.0", table.Cell(0, "amount"))
	assert.Equal(t, "", table.Cell(0, "email"))
	assert.Equal(t, "9", table.Cell(0, "customer_id"))
}

func TestCleanBothEmptyFailsWithoutOutput(t *testing.T) {
	f := newFixture(t, `[]`, `[]`)

	_, _, err := NewCleaner().Clean(context.Background(), f.usersPath, f.transactionsPath, f.outputPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEmptyInputs)

	_, statErr := os.Stat(f.outputPath)
	assert.True(t, os.IsNotExist(statErr), "no output file may be written on a fatal error")
}

func TestCleanNDJSONWithCorruptLine(t *testing.T) {
	f := newFixture(t,
		`[{"user_id": "1", "email": "ann@x.com"}]`,
		`{"user_id": "1", "tx_id": "t1", "amount": 1}
{"user_id": "1", "tx_id": "t2", "amount": !!}
{"user_id": "1", "tx_id": "t3", "amount": 3}`,
	)

	table, report, err := NewCleaner().Clean(context.Background(), f.usersPath, f.transactionsPath, f.outputPath)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TransactionsSkipped)
	assert.Equal(t, 2, report.TransactionsLoaded)
	require.Len(t, table.Rows, 2)
}

func TestCleanDateAndPIINormalization(t *testing.T) {
	f := newFixture(t,
		`[{"user_id": "u1", "email": "bob@mail.org", "phone": "771234567", "national_id": "SN12345678", "signup_date": "2023-06-01"}]`,
		`[{"user_id": "u1", "tx_id": "t1", "amount": "12.5", "created_at": "2024-03-15T09:30:00Z", "internal_notes": "VIP since 2019, reach at vip@corp.com"}]`,
	)

	table, _, err := NewCleaner().Clean(context.Background(), f.usersPath, f.transactionsPath, f.outputPath)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	assert.Equal(t, "t1", table.Cell(0, "ID"), "tx_id is normalized to ID")
	assert.Equal(t, "ID", table.Columns[0])
	assert.Equal(t, "b****@mail.org", table.Cell(0, "email"))
	assert.Equal(t, "XXXXXXXXX", table.Cell(0, "phone"))
	assert.Equal(t, "SN1XXXXXXX", table.Cell(0, "national_id"))
	assert.Equal(t, "01/06/2023 00:00:00", table.Cell(0, "signup_date"))
	assert.Equal(t, "15/03/2024 09:30:00", table.Cell(0, "created_at"))
	assert.Equal(t, "12.5", table.Cell(0, "amount"))

	notes := table.Cell(0, "internal_notes")
	assert.NotContains(t, notes, "2019")
	assert.NotContains(t, notes, "vip@corp.com")
	assert.Contains(t, notes, "<masked_email>")
}

func TestCleanTransactionValueWins(t *testing.T) {
	f := newFixture(t,
		`[{"user_id": "1", "status": "active"}]`,
		`[{"user_id": "1", "status": "completed", "amount": 1}]`,
	)

	table, _, err := NewCleaner().Clean(context.Background(), f.usersPath, f.transactionsPath, f.outputPath)
	require.NoError(t, err)
	assert.Equal(t, "completed", table.Cell(0, "status"))
	assert.Equal(t, "active", table.Cell(0, "status_user"))
}

func TestCleanUnreadableUsersStillProcessesTransactions(t *testing.T) {
	f := newFixture(t,
		`"just a scalar"`,
		`[{"tx_id": "t1", "amount": 2}]`,
	)

	table, report, err := NewCleaner().Clean(context.Background(), f.usersPath, f.transactionsPath, f.outputPath)
	require.NoError(t, err)

	assert.Equal(t, 0, report.UsersLoaded)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "t1", table.Cell(0, "ID"))
}

func TestCleanFallbacksAreCounted(t *testing.T) {
	f := newFixture(t,
		`[{"user_id": "1", "signup_date": "2023-06-01"}, {"user_id": "2", "signup_date": "unknown"}]`,
		`[{"user_id": "1", "amount": 1}, {"user_id": "2", "amount": 2}]`,
	)

	_, report, err := NewCleaner().Clean(context.Background(), f.usersPath, f.transactionsPath, f.outputPath)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TransformFallbacks)
}

func TestCleanContextCancellation(t *testing.T) {
	f := newFixture(t, `[{"user_id": "1"}]`, `[{"user_id": "1"}]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewCleaner().Clean(ctx, f.usersPath, f.transactionsPath, f.outputPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

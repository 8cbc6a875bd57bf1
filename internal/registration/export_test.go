package registration

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV_Empty(t *testing.T) {
	t.Parallel()

	data, err := ExportCSV(nil)
	require.ErrorIs(t, err, ErrEmptyData)
	assert.Nil(t, data)
	assert.Equal(t, "No registrations found", err.Error())
}

func TestExportCSV_RowsInStorageOrder(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Name: "Ada", Email: "ada@example.com", Phone: "9876543210", Year: "2", Branch: "CSE", Timestamp: "2025-01-02T10:00:00.000000"},
		{Name: "Lovelace, Ada", Email: "lovelace@example.com", Phone: "9876543211", Year: "3", Branch: "IT", Timestamp: "2025-01-02T11:00:00.000000"},
		{Name: `Grace "Amazing" Hopper`, Email: "grace@example.com", Phone: "9876543212", Year: "4", Branch: "ECE", Timestamp: "2025-01-02T12:00:00.000000"},
	}

	data, err := ExportCSV(records)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
	require.Len(t, lines, len(records)+1)
	assert.Equal(t, "Name,Email,Phone,Year,Branch,Registration Date", lines[0])
	assert.Equal(t, "Ada,ada@example.com,9876543210,2,CSE,2025-01-02T10:00:00.000000", lines[1])
	assert.Equal(t, `"Lovelace, Ada",lovelace@example.com,9876543211,3,IT,2025-01-02T11:00:00.000000`, lines[2])
	assert.Equal(t, `"Grace ""Amazing"" Hopper",grace@example.com,9876543212,4,ECE,2025-01-02T12:00:00.000000`, lines[3])
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 7, 9, 5, 42, 0, time.UTC)
	assert.Equal(t, "gdg_registrations_20250307_0905.csv", ExportFilename(now))
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, time.March, 7, 9, 5, 42, 123456789, time.Local)
	assert.Equal(t, "2025-03-07T09:05:42.123456", FormatTimestamp(ts))

	// sub-microsecond remainders are truncated, not rounded
	ts = time.Date(2025, time.March, 7, 9, 5, 42, 999, time.Local)
	assert.Equal(t, "2025-03-07T09:05:42", FormatTimestamp(ts))

	ts = time.Date(2025, time.March, 7, 9, 30, 15, 0, time.Local)
	assert.Equal(t, "2025-03-07T09:30:15", FormatTimestamp(ts))

	ts = time.Date(2025, time.March, 7, 9, 30, 15, 1000, time.Local)
	assert.Equal(t, "2025-03-07T09:30:15.000001", FormatTimestamp(ts))
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"2025-03-07T09:30:15", "2025-03-07T09:30:15.250000"} {
		ts, err := ParseTimestamp(s, time.UTC)
		require.NoError(t, err, s)
		assert.Equal(t, s, FormatTimestamp(ts))
	}

	_, err := ParseTimestamp("07/03/2025", time.UTC)
	assert.Error(t, err)
}

func TestContainsEmail(t *testing.T) {
	t.Parallel()

	records := []Record{{Email: "ada@example.com"}, {Email: "Grace@Example.com"}}
	assert.True(t, ContainsEmail(records, "ADA@example.COM"))
	assert.True(t, ContainsEmail(records, "grace@example.com"))
	assert.False(t, ContainsEmail(records, "linus@example.com"))
	assert.False(t, ContainsEmail(nil, "ada@example.com"))
}

package registration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordJSONLayout(t *testing.T) {
	t.Parallel()

	rec := Record{
		Name:      "Ada",
		Email:     "ada@example.com",
		Phone:     "9876543210",
		Year:      "2",
		Branch:    "CSE",
		Timestamp: "2025-01-02T10:00:00.000000",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"Ada","email":"ada@example.com","phone":"9876543210","year":"2","branch":"CSE","timestamp":"2025-01-02T10:00:00.000000"}`,
		string(data))
}

func TestRecordUnmarshalJSON_ScalarTypes(t *testing.T) {
	t.Parallel()

	var records []Record
	err := json.Unmarshal([]byte(`[{"name":"Ada","email":"ada@example.com","phone":9876543210,"year":2,"branch":"CSE","timestamp":"2025-01-02T10:00:00"}]`), &records)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "9876543210", records[0].Phone)
	assert.Equal(t, "2", records[0].Year)
	assert.Equal(t, "2025-01-02T10:00:00", records[0].Timestamp)
}

func TestRecordUnmarshalJSON_RejectsNonObject(t *testing.T) {
	t.Parallel()

	var records []Record
	err := json.Unmarshal([]byte(`["ada@example.com"]`), &records)
	require.Error(t, err)
}

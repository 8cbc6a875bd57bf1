package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/event-registration-server/database"
	"github.com/stacklok/event-registration-server/internal/registration"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("requires a container runtime")
	}
	t.Parallel()

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	s, err := NewPostgresStore(pool, WithClock(fixedClock))
	require.NoError(t, err)

	records, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, s.Append(ctx, newTestRecord("ada@example.com")))
	require.ErrorIs(t, s.Append(ctx, newTestRecord("ADA@example.com")), ErrDuplicateEmail)

	added, err := s.Import(ctx, []registration.Record{
		newTestRecord("ada@example.com"),
		newTestRecord("grace@example.com").Stamp(fixedTime),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	records, err = s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ada@example.com", records[0].Email)
	assert.Equal(t, registration.FormatTimestamp(fixedTime), records[0].Timestamp)
	assert.Equal(t, "grace@example.com", records[1].Email)
}

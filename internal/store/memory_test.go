package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/event-registration-server/internal/registration"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore(WithClock(fixedClock))

	records, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, s.Append(ctx, newTestRecord("ada@example.com")))
	require.ErrorIs(t, s.Append(ctx, newTestRecord("Ada@Example.com")), ErrDuplicateEmail)
	require.NoError(t, s.Append(ctx, newTestRecord("grace@example.com")))

	records, err = s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ada@example.com", records[0].Email)
	assert.Equal(t, registration.FormatTimestamp(fixedTime), records[0].Timestamp)

	// LoadAll hands out a copy
	records[0].Email = "changed@example.com"
	again, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", again[0].Email)
}

func TestMemoryStore_Import(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()

	added, err := s.Import(ctx, []registration.Record{
		newTestRecord("ada@example.com"),
		newTestRecord("ADA@example.com"),
		newTestRecord("grace@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
}

func TestNewPostgresStore_RequiresConnection(t *testing.T) {
	t.Parallel()

	_, err := NewPostgresStore(nil)
	require.Error(t, err)
}

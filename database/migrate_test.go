package database

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	upErr      error
	downErr    error
	stepsErr   error
	steps      []int
	downCalled bool
	version    uint
	dirty      bool
	versionErr error
}

func (f *fakeMigrator) Up() error { return f.upErr }
func (f *fakeMigrator) Down() error {
	f.downCalled = true
	return f.downErr
}
func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.stepsErr
}
func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }
func (*fakeMigrator) Close() (error, error)          { return nil, nil }

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	t.Parallel()

	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestToDriverURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "postgres scheme", in: "postgres://u:p@localhost:5432/db?sslmode=disable", want: "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{name: "postgresql scheme", in: "postgresql://u@db/app", want: "pgx5://u@db/app"},
		{name: "unsupported scheme", in: "mysql://u@db/app", wantErr: true},
		{name: "key value string", in: "host=localhost user=u", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := toDriverURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrateUp(t *testing.T) {
	t.Parallel()

	require.NoError(t, MigrateUp(&fakeMigrator{upErr: migrate.ErrNoChange, version: 1}))
	require.Error(t, MigrateUp(&fakeMigrator{upErr: errors.New("boom")}))
}

func TestMigrateDown(t *testing.T) {
	t.Parallel()

	all := &fakeMigrator{versionErr: migrate.ErrNilVersion}
	require.NoError(t, MigrateDown(all, 0))
	assert.True(t, all.downCalled)

	one := &fakeMigrator{}
	require.NoError(t, MigrateDown(one, 1))
	assert.Equal(t, []int{-1}, one.steps)

	failing := &fakeMigrator{stepsErr: errors.New("boom")}
	require.Error(t, MigrateDown(failing, 2))
}

func TestStatus(t *testing.T) {
	t.Parallel()

	status, err := Status(&fakeMigrator{versionErr: migrate.ErrNilVersion})
	require.NoError(t, err)
	assert.False(t, status.Applied)

	status, err = Status(&fakeMigrator{version: 1, dirty: true})
	require.NoError(t, err)
	assert.Equal(t, MigrationStatus{Version: 1, Dirty: true, Applied: true}, status)

	_, err = Status(&fakeMigrator{versionErr: errors.New("boom")})
	require.Error(t, err)
}

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("requires a container runtime")
	}
	t.Parallel()

	ctx := context.Background()
	connString, cleanupFunc := SetupTestDBContainer(t, ctx)
	t.Cleanup(cleanupFunc)

	m, err := GetMigrate(connString)
	require.NoError(t, err)
	defer m.Close()

	fnames, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)

	for i := 1; i <= len(fnames); i++ {
		require.NoError(t, m.Steps(i))
		require.NoError(t, m.Steps(-i))
		require.NoError(t, m.Steps(i))
	}
}

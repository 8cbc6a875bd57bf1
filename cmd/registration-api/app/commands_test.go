package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/event-registration-server/internal/registration"
	"github.com/stacklok/event-registration-server/pkg/versions"
)

// writeFileConfig writes a config that keeps registrations in dir and returns its path
func writeFileConfig(t *testing.T, dir string) (configPath, dataPath string) {
	t.Helper()
	dataPath = filepath.Join(dir, "data", "registrations.json")
	configPath = filepath.Join(dir, "config.yaml")
	content := "storage:\n  type: file\n  file:\n    path: " + dataPath + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return configPath, dataPath
}

func writeRecords(t *testing.T, path string, records []registration.Record) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func newTestCommand(run func(*cobra.Command, []string) error, addFlags func(*cobra.Command), args ...string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test", RunE: run, SilenceUsage: true, SilenceErrors: true}
	addFlags(cmd)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	return cmd, out
}

var sampleRecords = []registration.Record{
	{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210", Year: "2", Branch: "CSE", Timestamp: "2025-03-01T10:00:00.000000"},
	{Name: "Vikram Nair", Email: "vikram@example.com", Phone: "9123456780", Year: "3", Branch: "IT", Timestamp: "2025-03-02T11:30:00.000000"},
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing default file is ignored", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.Flags().String("env-file", filepath.Join(t.TempDir(), ".env"), "")
		assert.NoError(t, loadEnvFile(cmd))
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.Flags().String("env-file", defaultEnvFile, "")
		require.NoError(t, cmd.Flags().Set("env-file", filepath.Join(t.TempDir(), "missing.env")))
		assert.Error(t, loadEnvFile(cmd))
	})

	t.Run("loads variables without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("REG_TEST_FROM_FILE=file\nREG_TEST_PRESET=file\n"), 0600))
		t.Setenv("REG_TEST_PRESET", "env")
		t.Setenv("REG_TEST_FROM_FILE", "")
		require.NoError(t, os.Unsetenv("REG_TEST_FROM_FILE"))

		cmd := &cobra.Command{}
		cmd.Flags().String("env-file", defaultEnvFile, "")
		require.NoError(t, cmd.Flags().Set("env-file", path))
		require.NoError(t, loadEnvFile(cmd))

		assert.Equal(t, "file", os.Getenv("REG_TEST_FROM_FILE"))
		assert.Equal(t, "env", os.Getenv("REG_TEST_PRESET"))
	})
}

func TestVersionCommand_JSON(t *testing.T) {
	cmd, out := newTestCommand(nil, func(c *cobra.Command) {
		c.Flags().String("format", "", "")
	}, "--format", "json")
	cmd.RunE = nil
	cmd.Run = versionCmd.Run
	require.NoError(t, cmd.Execute())

	var info versions.VersionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, versions.GetVersionInfo().Version, info.Version)
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	configPath, dataPath := writeFileConfig(t, dir)

	cmd, out := newTestCommand(runSeed, addSeedFlags, "--config", configPath, "--count", "10", "--random-seed", "42")
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Added")

	data, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	var records []registration.Record
	require.NoError(t, json.Unmarshal(data, &records))
	assert.NotEmpty(t, records)
	assert.LessOrEqual(t, len(records), 10)

	emails := map[string]bool{}
	for _, r := range records {
		assert.False(t, emails[r.EmailKey()], "duplicate email %s", r.Email)
		emails[r.EmailKey()] = true
	}
}

func TestSeedCommand_DefaultCount(t *testing.T) {
	configPath, dataPath := writeFileConfig(t, t.TempDir())

	cmd, _ := newTestCommand(runSeed, addSeedFlags, "--config", configPath, "--random-seed", "7")
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	var records []registration.Record
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, defaultSeedCount)
	assert.Equal(t, 25, defaultSeedCount)
}

func TestSeedCommand_Backup(t *testing.T) {
	t.Run("copies the existing file and keeps its records", func(t *testing.T) {
		configPath, dataPath := writeFileConfig(t, t.TempDir())
		writeRecords(t, dataPath, sampleRecords)
		original, err := os.ReadFile(dataPath)
		require.NoError(t, err)

		cmd, out := newTestCommand(runSeed, addSeedFlags,
			"--config", configPath, "--count", "5", "--random-seed", "3", "--backup")
		require.NoError(t, cmd.Execute())

		backups, err := filepath.Glob(dataPath + ".backup.*")
		require.NoError(t, err)
		require.Len(t, backups, 1)
		assert.Regexp(t, `\.backup\.\d{13}$`, backups[0])
		assert.Contains(t, out.String(), backups[0])

		copied, err := os.ReadFile(backups[0])
		require.NoError(t, err)
		assert.Equal(t, original, copied)

		data, err := os.ReadFile(dataPath)
		require.NoError(t, err)
		var records []registration.Record
		require.NoError(t, json.Unmarshal(data, &records))
		require.Greater(t, len(records), len(sampleRecords))
		assert.Equal(t, sampleRecords, records[:len(sampleRecords)])
	})

	t.Run("nothing to copy without a file", func(t *testing.T) {
		configPath, dataPath := writeFileConfig(t, t.TempDir())

		cmd, _ := newTestCommand(runSeed, addSeedFlags,
			"--config", configPath, "--count", "2", "--random-seed", "3", "-b")
		require.NoError(t, cmd.Execute())

		backups, err := filepath.Glob(dataPath + ".backup.*")
		require.NoError(t, err)
		assert.Empty(t, backups)
	})
}

func TestSeedCommand_InvalidCount(t *testing.T) {
	configPath, _ := writeFileConfig(t, t.TempDir())
	cmd, _ := newTestCommand(runSeed, addSeedFlags, "--config", configPath, "--count", "0")
	assert.ErrorContains(t, cmd.Execute(), "count must be positive")
}

func TestExportCommand(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		configPath, dataPath := writeFileConfig(t, t.TempDir())
		writeRecords(t, dataPath, sampleRecords)

		cmd, out := newTestCommand(runExport, addExportFlags, "--config", configPath, "--output", "-")
		require.NoError(t, cmd.Execute())

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, strings.Join(registration.CSVHeader, ","), strings.TrimSpace(lines[0]))
		assert.True(t, strings.HasPrefix(lines[1], "Asha Rao,asha@example.com"))
	})

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		configPath, dataPath := writeFileConfig(t, dir)
		writeRecords(t, dataPath, sampleRecords)
		target := filepath.Join(dir, "out.csv")

		cmd, out := newTestCommand(runExport, addExportFlags, "--config", configPath, "--output", target)
		require.NoError(t, cmd.Execute())
		assert.Equal(t, target, strings.TrimSpace(out.String()))

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), "vikram@example.com")
	})

	t.Run("no registrations", func(t *testing.T) {
		configPath, _ := writeFileConfig(t, t.TempDir())
		cmd, _ := newTestCommand(runExport, addExportFlags, "--config", configPath, "--output", "-")
		err := cmd.Execute()
		assert.ErrorIs(t, err, registration.ErrEmptyData)
	})
}

func TestListCommand(t *testing.T) {
	configPath, dataPath := writeFileConfig(t, t.TempDir())
	writeRecords(t, dataPath, sampleRecords)

	t.Run("auto falls back to csv off a terminal", func(t *testing.T) {
		cmd, out := newTestCommand(runList, addListFlags, "--config", configPath)
		require.NoError(t, cmd.Execute())
		assert.True(t, strings.HasPrefix(out.String(), strings.Join(registration.CSVHeader, ",")))
	})

	t.Run("json", func(t *testing.T) {
		cmd, out := newTestCommand(runList, addListFlags, "--config", configPath, "--format", "json")
		require.NoError(t, cmd.Execute())

		var records []registration.Record
		require.NoError(t, json.Unmarshal(out.Bytes(), &records))
		assert.Equal(t, sampleRecords, records)
	})

	t.Run("table", func(t *testing.T) {
		cmd, out := newTestCommand(runList, addListFlags, "--config", configPath, "--format", "table")
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "asha@example.com")
		assert.Contains(t, out.String(), "Total: 2")
	})

	t.Run("unknown format", func(t *testing.T) {
		cmd, _ := newTestCommand(runList, addListFlags, "--config", configPath, "--format", "xml")
		assert.ErrorContains(t, cmd.Execute(), "unknown format")
	})
}

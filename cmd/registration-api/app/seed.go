package app

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/event-registration-server/internal/config"
	"github.com/stacklok/event-registration-server/internal/registration"
)

const defaultSeedCount = 25

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add sample registrations",
	Long: `Generate realistic sample registrations and add them to the configured store.
Samples whose email is already registered are skipped; existing registrations
are kept.

Use --random-seed for a reproducible data set. With file storage, --backup first
copies the registrations file to <file>.backup.<unix-ms>.`,
	RunE: runSeed,
}

func init() {
	addSeedFlags(seedCmd)
}

func addSeedFlags(cmd *cobra.Command) {
	addConfigFlag(cmd)
	cmd.Flags().IntP("count", "c", defaultSeedCount, "Number of sample registrations to generate")
	cmd.Flags().Uint64("random-seed", 0, "Seed for the sample generator (0 = random)")
	cmd.Flags().BoolP("backup", "b", false, "Copy the registrations file aside before seeding (file storage only)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	count, err := cmd.Flags().GetInt("count")
	if err != nil {
		return fmt.Errorf("failed to get count flag: %w", err)
	}
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	seed, err := cmd.Flags().GetUint64("random-seed")
	if err != nil {
		return fmt.Errorf("failed to get random-seed flag: %w", err)
	}
	if seed == 0 {
		seed = rand.Uint64()
	}

	backup, err := cmd.Flags().GetBool("backup")
	if err != nil {
		return fmt.Errorf("failed to get backup flag: %w", err)
	}

	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	// before the store is opened, since opening creates a missing file
	if backup {
		backupRegistrations(cmd, cfg, time.Now())
	}

	h, err := openConfiguredStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer h.cleanup()

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	samples := registration.GenerateSamples(count, rng, time.Now())

	added, err := h.store.Import(cmd.Context(), samples)
	if err != nil {
		return fmt.Errorf("failed to import samples: %w", err)
	}

	slog.Info("Seeded sample registrations",
		"generated", len(samples), "added", added, "skipped", len(samples)-added, "random_seed", seed)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %d sample registrations\n", added)
	return nil
}

// backupRegistrations copies the registrations file to <file>.backup.<unix-ms>.
// A missing file or a failed copy is reported and seeding continues.
func backupRegistrations(cmd *cobra.Command, cfg *config.Config, now time.Time) {
	if cfg.Storage.Type != config.StorageTypeFile || cfg.Storage.File == nil {
		slog.Warn("--backup only applies to file storage", "storage", cfg.Storage.Type)
		return
	}

	path := filepath.Clean(cfg.Storage.File.Path)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		slog.Warn("Could not back up existing registrations", "path", path, "error", err)
		return
	}

	target := fmt.Sprintf("%s.backup.%d", path, now.UnixMilli())
	if err := os.WriteFile(target, data, 0600); err != nil {
		slog.Warn("Could not back up existing registrations", "path", path, "error", err)
		return
	}
	slog.Info("Backed up existing registrations", "path", target)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Existing data backed up to %s\n", target)
}

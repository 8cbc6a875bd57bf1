package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/event-registration-server/internal/registration"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export registrations as CSV",
	Long: `Write every registration as CSV, in registration order, the same way the admin
panel's download does.

Without --output the file is named gdg_registrations_<YYYYMMDD_HHMM>.csv in the
current directory. Use --output - to write to standard output.`,
	RunE: runExport,
}

func init() {
	addExportFlags(exportCmd)
}

func addExportFlags(cmd *cobra.Command) {
	addConfigFlag(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file, or - for standard output")
}

func runExport(cmd *cobra.Command, _ []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	h, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer h.cleanup()

	data, err := h.service.ExportCSV(cmd.Context())
	if errors.Is(err, registration.ErrEmptyData) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to export registrations: %w", err)
	}

	if output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if output == "" {
		output = registration.ExportFilename(time.Now())
	}

	if err := os.WriteFile(filepath.Clean(output), data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	slog.Info("Exported registrations", "path", output, "bytes", len(data))
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

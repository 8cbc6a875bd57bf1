package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stacklok/event-registration-server/internal/registration"
)

// List output formats
const (
	formatAuto  = "auto"
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registrations",
	Long: `Print every registration followed by the branch and year breakdown.

The default format is a table when standard output is a terminal and CSV
otherwise.`,
	RunE: runList,
}

func init() {
	addListFlags(listCmd)
}

func addListFlags(cmd *cobra.Command) {
	addConfigFlag(cmd)
	cmd.Flags().StringP("format", "f", formatAuto, "Output format: auto, table, csv or json")
}

func runList(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format == formatAuto {
		format = formatCSV
		if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = formatTable
		}
	}

	h, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer h.cleanup()

	records, err := h.service.ListRegistrations(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case formatTable:
		stats := registration.ComputeStats(records)
		return writeTable(out, records, &stats)
	case formatCSV:
		return registration.WriteCSV(out, records)
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("unknown format %q: use auto, table, csv or json", format)
	}
}

func writeTable(w io.Writer, records []registration.Record, stats *registration.Stats) error {
	table := tablewriter.NewWriter(w)
	header := make([]any, len(registration.CSVHeader))
	for i, h := range registration.CSVHeader {
		header[i] = h
	}
	table.Header(header...)

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Name, r.Email, r.Phone, r.Year, r.Branch, r.Timestamp})
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d\nBy branch: %v\nBy year: %v\n", stats.Total, stats.Branches, stats.Years)
	return err
}

package registration

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// CSVHeader is the header row of a registration export.
var CSVHeader = []string{"Name", "Email", "Phone", "Year", "Branch", "Registration Date"}

const exportFilenameLayout = "20060102_1504"

// WriteCSV writes the header row followed by one row per record, in the given
// order. Lines end in CRLF.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i, r := range records {
		row := []string{r.Name, r.Email, r.Phone, r.Year, r.Branch, r.Timestamp}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV renders records as CSV. It returns ErrEmptyData when records is empty.
func ExportCSV(records []Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrEmptyData
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename returns the attachment name for an export generated at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("gdg_registrations_%s.csv", now.Format(exportFilenameLayout))
}

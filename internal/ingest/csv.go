package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/project-samarth/samarth/internal/datagov"
)

// ReadSampleCSV parses a bundled sample file into raw records, keyed by
// the lowercased header row. The file's modification time stands in for
// a snapshot timestamp.
func ReadSampleCSV(path string) ([]datagov.Record, time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to open sample: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to stat sample: %w", err)
	}

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse sample CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, time.Time{}, fmt.Errorf("sample CSV %s has no data rows", path)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	records := make([]datagov.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(datagov.Record, len(headers))
		for i, value := range row {
			if i < len(headers) {
				rec[headers[i]] = strings.TrimSpace(value)
			}
		}
		records = append(records, rec)
	}

	return records, info.ModTime().UTC(), nil
}

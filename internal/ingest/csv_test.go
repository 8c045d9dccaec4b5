package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadSampleCSV(t *testing.T) {
	path := writeFile(t, "production.csv",
		"State, Crop ,Year,Production_Tonnes\nKerala,Rice,2021, 5000 \nPunjab,Wheat,2022,NA\n")

	records, modTime, err := ReadSampleCSV(path)
	if err != nil {
		t.Fatalf("ReadSampleCSV failed: %v", err)
	}
	if modTime.IsZero() {
		t.Error("snapshot time must come from the file modtime")
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	if got := records[0].String("state"); got != "Kerala" {
		t.Errorf("state = %q, want %q (headers fold to lowercase)", got, "Kerala")
	}
	if got, ok := records[0].Float("production_tonnes"); !ok || got != 5000 {
		t.Errorf("production_tonnes = %v, %v, want 5000", got, ok)
	}
	if _, ok := records[1].Float("production_tonnes"); ok {
		t.Error("NA must read as not ok, never as zero")
	}
}

func TestReadSampleCSV_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, _, err := ReadSampleCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
			t.Error("expected error for a missing file")
		}
	})

	t.Run("header only", func(t *testing.T) {
		path := writeFile(t, "empty.csv", "state,year\n")
		if _, _, err := ReadSampleCSV(path); err == nil {
			t.Error("expected error for a file with no data rows")
		}
	})
}

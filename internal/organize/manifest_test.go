package organize

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"curator/internal/media"
)

func TestWriteRunManifest(t *testing.T) {
	dir := t.TempDir()
	items := []media.ProcessedItem{
		{
			Identity:     "id-1",
			OriginalName: "a.jpg",
			AssignedName: "2024-01-02_08-00-00_a.jpg",
			CapturedAt:   time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC),
			BucketKey:    "2024-01",
			Meta:         media.Metadata{DeviceMake: "Canon", DeviceModel: "EOS R6"},
		},
		{
			Identity:     "id-2",
			OriginalName: "b.jpg",
			AssignedName: "2024-02-05_09-30-00_b.jpg",
			CapturedAt:   time.Date(2024, time.February, 5, 9, 30, 0, 0, time.UTC),
			BucketKey:    "2024-02",
		},
	}
	sizes := map[string]int64{"id-1": 1024, "id-2": 2048}

	path, err := WriteRunManifest(dir, "run-123", items, sizes)
	if err != nil {
		t.Fatalf("WriteRunManifest: %v", err)
	}
	if filepath.Base(path) != "manifest_run-123.csv" {
		t.Fatalf("manifest filename = %s", filepath.Base(path))
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "assigned_name" || rows[0][4] != "bucket" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "2024-01-02_08-00-00_a.jpg" || rows[2][0] != "2024-02-05_09-30-00_b.jpg" {
		t.Fatalf("rows not in timeline order: %v", rows[1:])
	}
	if rows[1][5] != "1024" {
		t.Fatalf("size column = %q", rows[1][5])
	}
	if rows[1][6] != "Canon" || rows[1][7] != "EOS R6" {
		t.Fatalf("device columns = %q %q", rows[1][6], rows[1][7])
	}
}

func TestWriteBucketManifests(t *testing.T) {
	dir := t.TempDir()
	items := []media.ProcessedItem{
		{Identity: "id-1", AssignedName: "a.jpg", BucketKey: "2024-01", CapturedAt: time.Now()},
		{Identity: "id-2", AssignedName: "b.jpg", BucketKey: "2024-02", CapturedAt: time.Now()},
		{Identity: "id-3", AssignedName: "c.jpg", BucketKey: "2024-01", CapturedAt: time.Now()},
	}

	paths, err := WriteBucketManifests(dir, items, map[string]int64{})
	if err != nil {
		t.Fatalf("WriteBucketManifests: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("manifest count = %d, want 2", len(paths))
	}
	janRows := readCSV(t, paths["2024-01"])
	if len(janRows) != 3 {
		t.Fatalf("2024-01 rows = %d, want header + 2", len(janRows))
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	return rows
}

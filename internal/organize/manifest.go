package organize

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"curator/internal/media"
	"curator/internal/textutil"
)

// manifestHeader is the column set editors import from. Rows appear in
// capture-time order, matching the organized timeline.
var manifestHeader = []string{
	"assigned_name",
	"original_name",
	"identity",
	"capture_date",
	"bucket",
	"size_bytes",
	"device_make",
	"device_model",
	"generated_at",
}

// WriteRunManifest writes the whole-run timeline manifest into dir and
// returns its path. Items must already be in organized (ascending
// capture time) order.
func WriteRunManifest(dir, runID string, items []media.ProcessedItem, sizes map[string]int64) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("manifest_%s.csv", textutil.SanitizeToken(runID)))
	if err := writeManifestFile(path, items, sizes); err != nil {
		return "", err
	}
	return path, nil
}

// WriteBucketManifests writes one manifest per bucket into dir and
// returns the paths keyed by bucket key. Bucket order follows the
// organized item order.
func WriteBucketManifests(dir string, items []media.ProcessedItem, sizes map[string]int64) (map[string]string, error) {
	grouped := make(map[string][]media.ProcessedItem)
	var order []string
	for _, item := range items {
		if _, ok := grouped[item.BucketKey]; !ok {
			order = append(order, item.BucketKey)
		}
		grouped[item.BucketKey] = append(grouped[item.BucketKey], item)
	}

	paths := make(map[string]string, len(order))
	for _, key := range order {
		path := filepath.Join(dir, fmt.Sprintf("bucket_%s.csv", textutil.SanitizeToken(key)))
		if err := writeManifestFile(path, grouped[key], sizes); err != nil {
			return nil, err
		}
		paths[key] = path
	}
	return paths, nil
}

func writeManifestFile(path string, items []media.ProcessedItem, sizes map[string]int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(manifestHeader); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}

	generatedAt := time.Now().UTC().Format(time.RFC3339)
	for _, item := range items {
		row := []string{
			item.AssignedName,
			item.OriginalName,
			item.Identity,
			item.CapturedAt.Format("2006-01-02 15:04:05"),
			item.BucketKey,
			strconv.FormatInt(sizes[item.Identity], 10),
			item.Meta.DeviceMake,
			item.Meta.DeviceModel,
			generatedAt,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write manifest row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}
	return nil
}

package organize

import (
	"fmt"
	"path/filepath"
	"time"

	"curator/internal/textutil"
)

// Strategy selects how capture dates map to folder buckets.
type Strategy string

const (
	StrategyYearMonth Strategy = "year-month"
	StrategyYear      Strategy = "year"
	StrategyFlat      Strategy = "flat"
)

// flatBucketKey groups everything when no date bucketing is wanted.
const flatBucketKey = "all"

// ParseStrategy validates a strategy name from configuration.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(value) {
	case StrategyYearMonth, StrategyYear, StrategyFlat:
		return Strategy(value), nil
	default:
		return "", fmt.Errorf("organize: unknown bucket strategy %q", value)
	}
}

// AssignedName derives the target filename for an item. It is a pure
// function of (capturedAt, originalName): repeated calls anywhere always
// produce the same result, which keeps re-runs idempotent.
func AssignedName(capturedAt time.Time, originalName string) string {
	stamp := capturedAt.Format("2006-01-02_15-04-05")
	sanitized := textutil.SanitizeFileName(originalName)
	if sanitized == "" {
		return stamp
	}
	return stamp + "_" + sanitized
}

// BucketKey derives the grouping key for a capture timestamp.
func BucketKey(capturedAt time.Time, strategy Strategy) string {
	switch strategy {
	case StrategyYear:
		return capturedAt.Format("2006")
	case StrategyFlat:
		return flatBucketKey
	default:
		return capturedAt.Format("2006-01")
	}
}

// BucketPath derives the folder path (relative to the library root) for
// a bucket key, e.g. "2024/01-January" under the year-month strategy.
func BucketPath(capturedAt time.Time, strategy Strategy) string {
	switch strategy {
	case StrategyYear:
		return capturedAt.Format("2006")
	case StrategyFlat:
		return ""
	default:
		return filepath.Join(
			capturedAt.Format("2006"),
			fmt.Sprintf("%02d-%s", int(capturedAt.Month()), capturedAt.Month().String()),
		)
	}
}

// BucketDisplayName renders a human-readable bucket label.
func BucketDisplayName(key string, strategy Strategy) string {
	switch strategy {
	case StrategyFlat:
		return "All media"
	case StrategyYear:
		return key
	default:
		t, err := time.Parse("2006-01", key)
		if err != nil {
			return key
		}
		return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
	}
}

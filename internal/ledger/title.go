package ledger

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DeriveProjectName builds a readable project name from a source scope
// path, e.g. "photos/europe_trip-2024" becomes "Europe Trip 2024".
func DeriveProjectName(scope string) string {
	base := strings.TrimSpace(filepath.Base(filepath.Clean(scope)))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "Media Library"
	}
	replacer := strings.NewReplacer("_", " ", "-", " ", ".", " ")
	cleaned := strings.Join(strings.Fields(replacer.Replace(base)), " ")
	if cleaned == "" {
		return "Media Library"
	}
	return titleCaser.String(cleaned)
}

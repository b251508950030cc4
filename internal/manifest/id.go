package manifest

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID derives a manifest id from the creation time and the source folder
// name. The millisecond timestamp prefix keeps manifest filenames sortable
// most-recent-first; the random fragment removes the collision window between
// scans created within the same millisecond.
func NewID(sourcePath string, now time.Time) string {
	stamp := now.UTC().Format("20060102150405")
	millis := now.UTC().Nanosecond() / int(time.Millisecond)

	folder := filepath.Base(filepath.Clean(sourcePath))
	if folder == "." || folder == string(filepath.Separator) || folder == "" {
		folder = "unknown"
	}
	folder = sanitizeFolder(folder)

	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%03d_%s_%s", stamp, millis, folder, fragment)
}

func sanitizeFolder(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

package upload

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectKey builds a collision-resistant storage key from a timestamp, a
// random component and the sanitized original filename:
//
//	uploads/docs/20240131T154500_3f8a1c2b_statuts_2024.pdf
//
// Callers must never assume the key equals the input filename.
func ObjectKey(folder, fileName string, now time.Time) string {
	ts := now.UTC().Format("20060102T150405")
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	name := sanitizeFileName(fileName)
	if name == "" {
		name = "upload"
	}
	return path.Join(folder, fmt.Sprintf("%s_%s_%s", ts, random, name))
}

func sanitizeFileName(fileName string) string {
	// Strip any path the client sent along with the name.
	fileName = path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if fileName == "." || fileName == "/" {
		return ""
	}

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(fileName)
}

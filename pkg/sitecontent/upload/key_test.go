package upload_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amicale-dev/site-content/pkg/sitecontent/upload"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 1, 31, 15, 45, 0, 0, time.UTC)

	t.Run("carries folder, timestamp and name", func(t *testing.T) {
		key := upload.ObjectKey("uploads/docs", "statuts 2024.pdf", now)
		assert.True(t, strings.HasPrefix(key, "uploads/docs/20240131T154500_"))
		assert.True(t, strings.HasSuffix(key, "_statuts_2024.pdf"))
	})

	t.Run("never equals the input filename", func(t *testing.T) {
		key := upload.ObjectKey("uploads", "report.pdf", now)
		assert.NotEqual(t, "report.pdf", key)
		assert.NotEqual(t, "uploads/report.pdf", key)
	})

	t.Run("two keys for the same name differ", func(t *testing.T) {
		a := upload.ObjectKey("uploads", "same.pdf", now)
		b := upload.ObjectKey("uploads", "same.pdf", now)
		assert.NotEqual(t, a, b)
	})

	t.Run("strips client-sent paths", func(t *testing.T) {
		key := upload.ObjectKey("uploads", `C:\Users\jean\évil?.pdf`, now)
		assert.NotContains(t, key, `\`)
		assert.NotContains(t, key, "?")
		assert.True(t, strings.HasSuffix(key, "_évil_.pdf"))

		key = upload.ObjectKey("uploads", "../../etc/passwd", now)
		parts := strings.Split(key, "/")
		require.Len(t, parts, 2)
		assert.Equal(t, "uploads", parts[0])
		assert.True(t, strings.HasSuffix(key, "_passwd"))
	})

	t.Run("empty name falls back", func(t *testing.T) {
		key := upload.ObjectKey("uploads", "", now)
		assert.True(t, strings.HasSuffix(key, "_upload"))
	})
}

package feed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
	"github.com/amicale-dev/site-content/pkg/sitecontent/feed"
)

func announcement(title, priority string, createdAt time.Time) sitecontent.Announcement {
	a := sitecontent.Announcement{Title: title, Priority: priority}
	a.CreatedAt = createdAt
	return a
}

func TestSortAnnouncements(t *testing.T) {
	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("priority before recency", func(t *testing.T) {
		in := []sitecontent.Announcement{
			announcement("old high", sitecontent.PriorityHigh, base),
			announcement("new normal", sitecontent.PriorityNormal, base.Add(48*time.Hour)),
			announcement("new medium", sitecontent.PriorityMedium, base.Add(24*time.Hour)),
		}

		out := feed.SortAnnouncements(in)
		require.Len(t, out, 3)
		assert.Equal(t, "old high", out[0].Title)
		assert.Equal(t, "new medium", out[1].Title)
		assert.Equal(t, "new normal", out[2].Title)
	})

	t.Run("same priority sorts newest first", func(t *testing.T) {
		in := []sitecontent.Announcement{
			announcement("older", sitecontent.PriorityHigh, base),
			announcement("newer", sitecontent.PriorityHigh, base.Add(time.Hour)),
		}

		out := feed.SortAnnouncements(in)
		assert.Equal(t, "newer", out[0].Title)
		assert.Equal(t, "older", out[1].Title)
	})

	t.Run("unknown priority ranks last", func(t *testing.T) {
		in := []sitecontent.Announcement{
			announcement("mystery", "urgent-ish", base.Add(time.Hour)),
			announcement("normal", sitecontent.PriorityNormal, base),
		}

		out := feed.SortAnnouncements(in)
		assert.Equal(t, "normal", out[0].Title)
		assert.Equal(t, "mystery", out[1].Title)
	})

	t.Run("stable on full ties", func(t *testing.T) {
		in := []sitecontent.Announcement{
			announcement("first", sitecontent.PriorityNormal, base),
			announcement("second", sitecontent.PriorityNormal, base),
			announcement("third", sitecontent.PriorityNormal, base),
		}

		out := feed.SortAnnouncements(in)
		assert.Equal(t, "first", out[0].Title)
		assert.Equal(t, "second", out[1].Title)
		assert.Equal(t, "third", out[2].Title)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		in := []sitecontent.Announcement{
			announcement("normal", sitecontent.PriorityNormal, base),
			announcement("high", sitecontent.PriorityHigh, base),
		}

		_ = feed.SortAnnouncements(in)
		assert.Equal(t, "normal", in[0].Title)
	})
}

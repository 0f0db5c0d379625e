package feed

import (
	"sort"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
)

// priorityRank orders announcement priorities. Unrecognized values rank
// after all known ones.
var priorityRank = map[string]int{
	sitecontent.PriorityHigh:   0,
	sitecontent.PriorityMedium: 1,
	sitecontent.PriorityNormal: 2,
}

func rankOf(priority string) int {
	if rank, ok := priorityRank[priority]; ok {
		return rank
	}
	return len(priorityRank)
}

// SortAnnouncements returns a fresh slice ordered by priority (high,
// medium, normal, then unrecognized), breaking ties by CreatedAt
// descending. The sort is stable: items equal on both keys keep their
// input order.
func SortAnnouncements(items []sitecontent.Announcement) []sitecontent.Announcement {
	out := make([]sitecontent.Announcement, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rankOf(out[i].Priority), rankOf(out[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

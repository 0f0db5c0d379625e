package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/amicale-dev/site-content/pkg/sitecontent/feed"
)

// GetResources serves the aggregated public feed. A failed source
// collection degrades to an empty sequence; the response still carries
// the items from the sources that loaded.
func (s *Server) GetResources(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = feed.CategoryAll
	}
	query := r.URL.Query().Get("q")

	result := s.aggregator.Aggregate(r.Context(), category, query)
	if len(result.DegradedSources) > 0 {
		w.Header().Set("X-Degraded-Sources", strings.Join(result.DegradedSources, ","))
	}
	render.JSON(w, r, result)
}

// ListAnnouncements serves the home-page announcements ordered by
// priority then recency.
func (s *Server) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	list := s.announcements.List(r.Context())
	if list.Degraded {
		w.Header().Set("X-Degraded", "true")
	}
	render.JSON(w, r, feed.SortAnnouncements(list.Items))
}

// ListSiteDocuments serves the public document library, newest first.
func (s *Server) ListSiteDocuments(w http.ResponseWriter, r *http.Request) {
	list := s.documents.List(r.Context())
	if list.Degraded {
		w.Header().Set("X-Degraded", "true")
	}
	render.JSON(w, r, list.Items)
}

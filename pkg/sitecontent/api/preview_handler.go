package api

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/amicale-dev/site-content/pkg/sitecontent/preview"
)

// PreviewResponse carries the resolved target and the surface the viewer
// should display.
type PreviewResponse struct {
	Target  preview.Target  `json:"target"`
	Surface preview.Surface `json:"surface"`
}

// ResolvePreview resolves a (content_type, url) pair to its display
// strategy. Unknown content types are not errors: they resolve to the
// download-only surface.
func (s *Server) ResolvePreview(w http.ResponseWriter, r *http.Request) {
	contentType := r.URL.Query().Get("content_type")
	sourceURL := r.URL.Query().Get("url")
	if sourceURL == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "url parameter is required"})
		return
	}

	target := preview.ResolveTarget(contentType, sourceURL)
	render.JSON(w, r, PreviewResponse{
		Target:  target,
		Surface: s.renderer.Render(target),
	})
}

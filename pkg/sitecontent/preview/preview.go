// Package preview resolves uploaded documents to a display strategy and
// produces the surface the viewer shows: an inline image, an embedded PDF
// viewer, an external office-conversion viewer, or a download-only
// fallback.
package preview

import (
	"fmt"
	"net/url"
	"strings"
)

// Strategy is one of the four mutually exclusive display mechanisms.
// Resolution is a pure function of the content type.
type Strategy string

const (
	// StrategyImage renders the file inline as an image.
	StrategyImage Strategy = "image"
	// StrategyPDF embeds the browser's native PDF viewer.
	StrategyPDF Strategy = "pdf"
	// StrategyOffice delegates to an external conversion-preview service.
	StrategyOffice Strategy = "office"
	// StrategyDownload is the terminal default: no inline preview, only a
	// download affordance. It never errors.
	StrategyDownload Strategy = "download"
)

// DefaultViewerBase is the external conversion service used for office
// documents when no other base is configured.
const DefaultViewerBase = "https://docs.google.com/viewer"

var officeMarkers = []string{"word", "excel", "powerpoint"}

// Resolve maps a content type to its strategy. Checks run in fixed
// precedence order and the first match wins; anything unmatched falls
// through to StrategyDownload.
func Resolve(contentType string) Strategy {
	ct := strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case strings.HasPrefix(ct, "image/"):
		return StrategyImage
	case ct == "application/pdf" || strings.Contains(ct, "pdf"):
		return StrategyPDF
	default:
		for _, marker := range officeMarkers {
			if strings.Contains(ct, marker) {
				return StrategyOffice
			}
		}
		return StrategyDownload
	}
}

// Target is a (contentType, url) pair resolved to its strategy.
type Target struct {
	ContentType string   `json:"content_type"`
	URL         string   `json:"url"`
	Strategy    Strategy `json:"strategy"`
}

// ResolveTarget resolves a content type and source URL into a render
// target. Pure and synchronous.
func ResolveTarget(contentType, sourceURL string) Target {
	return Target{
		ContentType: contentType,
		URL:         sourceURL,
		Strategy:    Resolve(contentType),
	}
}

// SurfaceKind describes what the client should display.
type SurfaceKind string

const (
	SurfaceImage    SurfaceKind = "image"
	SurfaceEmbed    SurfaceKind = "embed"
	SurfaceDownload SurfaceKind = "download"
	SurfaceError    SurfaceKind = "error"
)

// Surface is the displayable outcome of rendering a target. Every
// surface, including the error one, retains the download affordance so
// the viewer is never stuck.
type Surface struct {
	Kind        SurfaceKind `json:"kind"`
	EmbedURL    string      `json:"embed_url,omitempty"`
	DownloadURL string      `json:"download_url"`
	Message     string      `json:"message,omitempty"`
}

// Renderer produces surfaces for resolved targets.
type Renderer struct {
	// ViewerBase is the external office-conversion service endpoint.
	ViewerBase string
}

// NewRenderer creates a renderer using the default office viewer service.
func NewRenderer() *Renderer {
	return &Renderer{ViewerBase: DefaultViewerBase}
}

// Render produces the surface for a target. It never fails: unsupported
// types get the download surface.
func (r *Renderer) Render(target Target) Surface {
	switch target.Strategy {
	case StrategyImage:
		return Surface{Kind: SurfaceImage, EmbedURL: target.URL, DownloadURL: target.URL}
	case StrategyPDF:
		return Surface{Kind: SurfaceEmbed, EmbedURL: target.URL, DownloadURL: target.URL}
	case StrategyOffice:
		return Surface{Kind: SurfaceEmbed, EmbedURL: r.officeURL(target.URL), DownloadURL: target.URL}
	default:
		return Surface{
			Kind:        SurfaceDownload,
			DownloadURL: target.URL,
			Message:     "No inline preview available for this file type.",
		}
	}
}

// Fail is the bounded failure path for runtime render errors (image or
// embedded viewer failed to load): an explicit error surface that still
// offers the download.
func (r *Renderer) Fail(target Target, message string) Surface {
	if message == "" {
		message = "The document could not be displayed."
	}
	return Surface{Kind: SurfaceError, DownloadURL: target.URL, Message: message}
}

func (r *Renderer) officeURL(sourceURL string) string {
	base := r.ViewerBase
	if base == "" {
		base = DefaultViewerBase
	}
	return fmt.Sprintf("%s?embedded=true&url=%s", base, url.QueryEscape(sourceURL))
}

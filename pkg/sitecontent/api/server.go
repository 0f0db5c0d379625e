// Package api exposes the content-access layer over HTTP: the public
// resource feed, document previews and contact forms, plus the
// token-protected back-office CRUD and upload endpoints.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
	"github.com/amicale-dev/site-content/pkg/sitecontent/feed"
	"github.com/amicale-dev/site-content/pkg/sitecontent/notify"
	"github.com/amicale-dev/site-content/pkg/sitecontent/preview"
	"github.com/amicale-dev/site-content/pkg/sitecontent/upload"
)

// Options configures a Server.
type Options struct {
	Repo   sitecontent.Repository
	Blob   sitecontent.BlobStore
	Logger *slog.Logger
	Sender notify.Sender

	// JWTSecret enables the admin and upload routes when non-empty.
	JWTSecret string

	// ViewerBase overrides the office preview conversion service.
	ViewerBase string

	// UploadFolder is the key prefix for uploaded objects.
	UploadFolder string

	// Sweeper, when set, is attached to the upload pipeline.
	Sweeper *upload.Sweeper

	// ContactRecipient receives contact and complaint notifications.
	ContactRecipient string
}

// Server wires the stores, pipeline, aggregator and renderer behind chi
// routes.
type Server struct {
	logger *slog.Logger

	stores        map[string]*sitecontent.Store
	announcements *sitecontent.Collection[sitecontent.Announcement]
	messages      *sitecontent.Collection[sitecontent.ContactMessage]
	documents     *sitecontent.Collection[sitecontent.SiteDocument]

	aggregator *feed.Aggregator
	pipeline   *upload.Pipeline
	renderer   *preview.Renderer
	sender     notify.Sender

	uploadFolder     string
	contactRecipient string
	tokenAuth        *jwtauth.JWTAuth
}

// NewServer creates the HTTP server for the content service.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	newStore := func(collection string) *sitecontent.Store {
		return sitecontent.NewStore(collection, opts.Repo, sitecontent.WithLogger(logger))
	}

	articles := sitecontent.NewCollection[sitecontent.Article](newStore(sitecontent.CollectionArticles))
	videos := sitecontent.NewCollection[sitecontent.Video](newStore(sitecontent.CollectionVideos))
	newsletters := sitecontent.NewCollection[sitecontent.Newsletter](newStore(sitecontent.CollectionNewsletters))
	announcements := sitecontent.NewCollection[sitecontent.Announcement](newStore(sitecontent.CollectionAnnouncements))
	messages := sitecontent.NewCollection[sitecontent.ContactMessage](newStore(sitecontent.CollectionMessages))
	documents := sitecontent.NewCollection[sitecontent.SiteDocument](newStore(sitecontent.CollectionDocuments))

	stores := map[string]*sitecontent.Store{
		sitecontent.CollectionArticles:      articles.Store(),
		sitecontent.CollectionVideos:        videos.Store(),
		sitecontent.CollectionNewsletters:   newsletters.Store(),
		sitecontent.CollectionVendors:       newStore(sitecontent.CollectionVendors),
		sitecontent.CollectionAdvertisers:   newStore(sitecontent.CollectionAdvertisers),
		sitecontent.CollectionAnnouncements: announcements.Store(),
		sitecontent.CollectionDocuments:     documents.Store(),
		sitecontent.CollectionMessages:      messages.Store(),
	}

	pipelineOpts := []upload.PipelineOption{upload.WithLogger(logger)}
	if opts.Sweeper != nil {
		pipelineOpts = append(pipelineOpts, upload.WithSweeper(opts.Sweeper))
	}

	renderer := preview.NewRenderer()
	if opts.ViewerBase != "" {
		renderer.ViewerBase = opts.ViewerBase
	}

	sender := opts.Sender
	if sender == nil {
		sender = notify.NewLogSender(logger)
	}

	uploadFolder := opts.UploadFolder
	if uploadFolder == "" {
		uploadFolder = "uploads"
	}

	var tokenAuth *jwtauth.JWTAuth
	if opts.JWTSecret != "" {
		tokenAuth = jwtauth.New("HS256", []byte(opts.JWTSecret), nil)
	}

	return &Server{
		logger:           logger,
		stores:           stores,
		announcements:    announcements,
		messages:         messages,
		documents:        documents,
		aggregator:       feed.NewAggregator(articles, videos, newsletters, logger),
		pipeline:         upload.NewPipeline(opts.Blob, pipelineOpts...),
		renderer:         renderer,
		sender:           sender,
		uploadFolder:     uploadFolder,
		contactRecipient: opts.ContactRecipient,
		tokenAuth:        tokenAuth,
	}
}

// Routes returns the chi router for the service.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		// Public surface.
		r.Get("/resources", s.GetResources)
		r.Get("/announcements", s.ListAnnouncements)
		r.Get("/documents", s.ListSiteDocuments)
		r.Get("/preview", s.ResolvePreview)
		r.Post("/contact", s.SubmitContact)
		r.Post("/complaints", s.SubmitComplaint)

		// Back office, token-protected.
		if s.tokenAuth != nil {
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(s.tokenAuth))
				r.Use(jwtauth.Authenticator)

				r.Post("/uploads", s.Upload)
				r.Route("/admin/{collection}", func(r chi.Router) {
					r.Get("/", s.AdminList)
					r.Post("/", s.AdminCreate)
					r.Get("/{id}", s.AdminGet)
					r.Put("/{id}", s.AdminUpdate)
					r.Delete("/{id}", s.AdminDelete)
				})
			})
		}
	})

	return r
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	Retriable bool   `json:"retriable,omitempty"`
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	retriable := false

	var uerr *upload.UploadError
	switch {
	case errors.Is(err, sitecontent.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, sitecontent.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sitecontent.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		retriable = true
	case errors.As(err, &uerr):
		status = http.StatusBadGateway
		retriable = uerr.Retriable
	}

	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error(), Retriable: retriable})
}

// identityFromContext extracts the authenticated identity from verified
// JWT claims. The uid claim is all this layer consumes.
func identityFromContext(r *http.Request) sitecontent.Identity {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return sitecontent.Identity{}
	}
	uid, _ := claims["uid"].(string)
	return sitecontent.Identity{UID: uid}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
)

// The admin CRUD endpoints operate on the open field maps of the
// editable collections. Store-owned keys in request bodies are ignored
// by the store.

func (s *Server) adminStore(w http.ResponseWriter, r *http.Request) *sitecontent.Store {
	collection := chi.URLParam(r, "collection")
	store, ok := s.stores[collection]
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse{Error: "unknown collection " + collection})
		return nil
	}
	return store
}

// AdminList returns a collection's documents, newest first. A degraded
// read still answers 200 with an empty or partial list, flagged by the
// X-Degraded header so the back office can tell "empty" from "broken".
func (s *Server) AdminList(w http.ResponseWriter, r *http.Request) {
	store := s.adminStore(w, r)
	if store == nil {
		return
	}

	result := store.List(r.Context())
	if result.Degraded {
		w.Header().Set("X-Degraded", "true")
	}
	render.JSON(w, r, result.Items)
}

func (s *Server) AdminGet(w http.ResponseWriter, r *http.Request) {
	store := s.adminStore(w, r)
	if store == nil {
		return
	}

	doc, err := store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, doc)
}

func (s *Server) AdminCreate(w http.ResponseWriter, r *http.Request) {
	store := s.adminStore(w, r)
	if store == nil {
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	doc, err := store.Create(r.Context(), fields)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	identity := identityFromContext(r)
	s.logger.Info("document created",
		"collection", store.Collection(), "id", doc.ID, "by", identity.UID)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, doc)
}

func (s *Server) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	store := s.adminStore(w, r)
	if store == nil {
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	doc, err := store.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, doc)
}

// AdminDelete is idempotent; the response reports whether a document
// existed to be removed.
func (s *Server) AdminDelete(w http.ResponseWriter, r *http.Request) {
	store := s.adminStore(w, r)
	if store == nil {
		return
	}

	existed, err := store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"deleted": existed})
}

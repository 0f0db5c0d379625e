package api

import (
	"net/http"
	"path"

	"github.com/go-chi/render"

	"github.com/amicale-dev/site-content/pkg/sitecontent/upload"
)

const maxUploadBytes = 64 << 20 // 64 MiB

// Upload accepts a multipart file and stores it through the pipeline.
// The response carries the stored key and a dereferenceable URL; the key
// never equals the submitted filename. Failures include a retriable flag
// so the editor can offer "try again" only when it can help.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	folder := s.uploadFolder
	if sub := r.FormValue("folder"); sub != "" {
		// Keep caller-chosen folders under the configured prefix.
		folder = path.Join(folder, path.Clean("/"+sub))
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	identity := identityFromContext(r)

	result, err := s.pipeline.Upload(r.Context(), upload.Request{
		Folder:      folder,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
		UploaderID:  identity.UID,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.logger.Info("file uploaded",
		"key", result.Key, "size", result.Size, "by", identity.UID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

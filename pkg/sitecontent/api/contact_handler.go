package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
	"github.com/amicale-dev/site-content/pkg/sitecontent/notify"
)

// ContactRequest is the request body for contact and complaint forms.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// SubmitContact persists a contact-form submission and notifies the
// office. Both are write paths: any failure surfaces to the caller with
// an explicit, retryable error instead of being swallowed.
func (s *Server) SubmitContact(w http.ResponseWriter, r *http.Request) {
	s.submitForm(w, r, notify.TemplateContact)
}

// SubmitComplaint is the complaint-form variant of SubmitContact.
func (s *Server) SubmitComplaint(w http.ResponseWriter, r *http.Request) {
	s.submitForm(w, r, notify.TemplateComplaint)
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request, template notify.TemplateID) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	vars := map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"message": req.Message,
	}
	if template == notify.TemplateComplaint {
		vars["subject"] = req.Subject
	}

	// The template's variable requirements are part of the request
	// contract. Checking them before the write keeps a malformed
	// submission from being persisted and then failing delivery on
	// every retry.
	if err := notify.ValidateVars(template, vars); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
		return
	}

	msg, err := s.messages.Create(r.Context(), sitecontent.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Message,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := s.sender.Send(r.Context(), template, s.contactRecipient, vars); err != nil {
		s.logger.Error("notification failed", "template", string(template), "error", err)
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, ErrorResponse{
			Error:     "your message was saved but could not be delivered, please try again",
			Retriable: true,
		})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, msg)
}

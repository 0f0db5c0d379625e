// Package notify is the outbound notification collaborator: messages are
// sent by template id with a variable map, and this layer's only
// obligation is supplying a well-formed variable map per template.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// TemplateID names an outbound message template.
type TemplateID string

const (
	// TemplateContact is the contact-form notification to the office.
	TemplateContact TemplateID = "contact_form"
	// TemplateComplaint is the complaint-form notification.
	TemplateComplaint TemplateID = "complaint_form"
)

// ErrUnknownTemplate indicates a template id this layer does not know.
var ErrUnknownTemplate = errors.New("unknown notification template")

// requiredVars lists the variables each template needs.
var requiredVars = map[TemplateID][]string{
	TemplateContact:   {"name", "email", "message"},
	TemplateComplaint: {"name", "email", "subject", "message"},
}

// ValidateVars checks that vars carries every variable the template
// requires, with non-empty values.
func ValidateVars(template TemplateID, vars map[string]string) error {
	required, ok := requiredVars[template]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, template)
	}
	for _, name := range required {
		if vars[name] == "" {
			return fmt.Errorf("template %s: missing variable %q", template, name)
		}
	}
	return nil
}

// Sender delivers a templated notification. Implementations wrap the
// actual delivery service; failures must surface to the caller.
type Sender interface {
	Send(ctx context.Context, template TemplateID, recipient string, vars map[string]string) error
}

// LogSender validates and logs notifications without delivering them.
// Used in development and as a stand-in when no delivery service is
// configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, template TemplateID, recipient string, vars map[string]string) error {
	if err := ValidateVars(template, vars); err != nil {
		return err
	}
	s.logger.Info("notification sent (log only)",
		"template", string(template), "recipient", recipient)
	return nil
}

// Sent is one recorded notification.
type Sent struct {
	Template  TemplateID
	Recipient string
	Vars      map[string]string
}

// Recorder is a Sender that records deliveries for tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent

	// Err, when set, is returned from every Send.
	Err error
}

func (r *Recorder) Send(ctx context.Context, template TemplateID, recipient string, vars map[string]string) error {
	if err := ValidateVars(template, vars); err != nil {
		return err
	}
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Template: template, Recipient: recipient, Vars: vars})
	return nil
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// Package notify provides templated email dispatch. It's intentionally
// thin: white-labeled notification branding and per-tenant templates are out
// of scope; only onboarding verification and GDPR deletion confirmation
// emails flow through it.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
)

// Message is a rendered email ready for dispatch.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered message, implemented by an SMTP/API backend in
// production and a recording fake in tests.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Template names registered with the notifier.
const (
	TemplateOnboardingVerification = "onboarding_verification"
	TemplateGDPRDeletionConfirmed  = "gdpr_deletion_confirmed"
)

var templates = map[string]struct {
	subject string
	body    string
}{
	TemplateOnboardingVerification: {
		subject: "Verify your account",
		body:    "Hi {{.Name}}, confirm your account by visiting {{.VerificationURL}}.",
	},
	TemplateGDPRDeletionConfirmed: {
		subject: "Your data has been deleted",
		body:    "Hi {{.Name}}, we've completed the deletion of your account data as requested.",
	},
}

// Notifier renders and sends templated emails.
type Notifier struct {
	sender Sender
}

// NewNotifier constructs a Notifier over the given Sender.
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// Send renders templateName with data and dispatches it to the recipient.
func (n *Notifier) Send(ctx context.Context, to string, templateName string, data map[string]interface{}) error {
	tmpl, ok := templates[templateName]
	if !ok {
		return fmt.Errorf("unknown notification template: %s", templateName)
	}

	body, err := renderTemplate(tmpl.body, data)
	if err != nil {
		return fmt.Errorf("render template %s: %w", templateName, err)
	}

	return n.sender.Send(ctx, &Message{To: to, Subject: tmpl.subject, Body: body})
}

func renderTemplate(body string, data map[string]interface{}) (string, error) {
	t, err := template.New("notification").Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

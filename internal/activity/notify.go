package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adxcore/orchestrator/internal/notify"
)

// NotifyInput is the payload for the notify activity.
type NotifyInput struct {
	To       string                 `json:"to"`
	Template string                 `json:"template"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// Notify sends a templated notification email, used by onboarding and GDPR
// deletion workflows.
type Notify struct {
	notifier *notify.Notifier
}

// NewNotify constructs the notify activity.
func NewNotify(notifier *notify.Notifier) *Notify {
	return &Notify{notifier: notifier}
}

func (a *Notify) Name() string { return "notify" }

func (a *Notify) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *Notify) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in NotifyInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode notify input: %w", err)
	}
	if in.To == "" || in.Template == "" {
		return nil, fmt.Errorf("to and template are required")
	}

	if err := a.notifier.Send(ctx, in.To, in.Template, in.Data); err != nil {
		return nil, fmt.Errorf("send notification: %w", err)
	}

	return json.Marshal(map[string]bool{"sent": true})
}

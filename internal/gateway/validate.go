package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var bodyValidator = validator.New()

// dispatchEnvelope is the structural shape every workflow dispatch body
// must satisfy regardless of workflow type, checked before the
// workflow-specific payload reaches the engine.
type dispatchEnvelope struct {
	TenantID string `json:"tenant_id" validate:"required"`
}

func validateDispatchBody(body []byte) error {
	var env dispatchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := bodyValidator.Struct(env); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

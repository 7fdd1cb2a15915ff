package workflows

import "encoding/json"

// NewUserOnboardingDefinition builds the user onboarding workflow:
// validate -> hash password -> audit -> send verification email.
func NewUserOnboardingDefinition() *Definition {
	return &Definition{
		Name: "user_onboarding",
		Steps: []Step{
			{
				Name:     "validate",
				Activity: "validate_user",
				Input:    passthroughInput,
			},
			{
				Name:     "hash_password",
				Activity: "hash_password",
				Input:    passthroughInput,
			},
			{
				Name:     "record_creation",
				Activity: "audit",
				Input:    onboardingAuditInput,
			},
			{
				Name:     "send_verification",
				Activity: "notify",
				Input:    onboardingNotifyInput,
			},
		},
	}
}

func passthroughInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	return state["input"], nil
}

func onboardingAuditInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Email    string `json:"email"`
		TenantID string `json:"tenant_id"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"tenant_id": in.TenantID,
		"action":    "user.created",
		"resource":  in.Email,
		"success":   true,
	})
}

func onboardingNotifyInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"to":       in.Email,
		"template": "onboarding_verification",
		"data":     map[string]string{"Name": in.Name, "VerificationURL": "https://app/verify?email=" + in.Email},
	})
}

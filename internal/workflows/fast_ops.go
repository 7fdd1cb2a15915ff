package workflows

// NewValidateUserDefinition wraps the validate_user activity as its own
// dispatchable workflow type, distinct from the validate step inside
// user_onboarding — this is the gateway's synchronous allowlisted fast
// path for re-checking an existing user's credentials.
func NewValidateUserDefinition() *Definition {
	return &Definition{
		Name: "validate_user",
		Steps: []Step{
			{Name: "validate", Activity: "validate_user", Input: passthroughInput},
		},
	}
}

// NewCheckPermissionsDefinition is the gateway's synchronous allowlisted
// fast path for an authorization check.
func NewCheckPermissionsDefinition() *Definition {
	return &Definition{
		Name: "check_permissions",
		Steps: []Step{
			{Name: "check", Activity: "check_permissions", Input: passthroughInput},
		},
	}
}

// NewGetUserProfileDefinition is the gateway's synchronous allowlisted fast
// path for fetching the caller's profile view.
func NewGetUserProfileDefinition() *Definition {
	return &Definition{
		Name: "get_user_profile",
		Steps: []Step{
			{Name: "fetch", Activity: "get_user_profile", Input: passthroughInput},
		},
	}
}

package activity

import (
	"context"
	"encoding/json"
	"fmt"
)

// rolePermissions is the static role-to-permission map checked by
// check_permissions. A real deployment would source this from the tenant's
// RBAC configuration; the allowlisted fast path only needs a yes/no answer
// fast enough to stay inside the gateway's synchronous deadline, so a
// static map is what backs it here.
var rolePermissions = map[string][]string{
	"owner":  {"*"},
	"admin":  {"tenant.manage", "user.manage", "billing.manage", "module.install"},
	"member": {"file.upload", "workflow.dispatch"},
	"viewer": {"file.read"},
}

// CheckPermissionsInput is the payload for the check_permissions activity.
type CheckPermissionsInput struct {
	Roles      []string `json:"roles"`
	Permission string   `json:"permission"`
}

// CheckPermissionsOutput reports the authorization decision.
type CheckPermissionsOutput struct {
	Allowed bool `json:"allowed"`
}

// CheckPermissions backs the gateway's allowlisted "check_permissions" fast
// path: a pure, stateless lookup with no external calls.
type CheckPermissions struct{}

func NewCheckPermissions() *CheckPermissions { return &CheckPermissions{} }

func (c *CheckPermissions) Name() string { return "check_permissions" }

func (c *CheckPermissions) DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

func (c *CheckPermissions) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in CheckPermissionsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("check_permissions: invalid input: %w", err)
	}

	allowed := false
	for _, role := range in.Roles {
		for _, perm := range rolePermissions[role] {
			if perm == "*" || perm == in.Permission {
				allowed = true
			}
		}
	}

	return json.Marshal(CheckPermissionsOutput{Allowed: allowed})
}

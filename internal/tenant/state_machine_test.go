package tenant

import (
	"testing"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name        string
		current     Status
		expected    Status
		expectError bool
	}{
		{name: "provisioning to active", current: StatusProvisioning, expected: StatusActive, expectError: false},
		{name: "upgrading to active", current: StatusUpgrading, expected: StatusActive, expectError: false},
		{name: "downgrading to active", current: StatusDowngrading, expected: StatusActive, expectError: false},
		{name: "maintenance to active", current: StatusMaintenance, expected: StatusActive, expectError: false},
		{name: "active is not in-flight", current: StatusActive, expected: "", expectError: true},
		{name: "suspended is not in-flight", current: StatusSuspended, expected: "", expectError: true},
		{name: "deleted is not in-flight", current: StatusDeleted, expected: "", expectError: true},
		{name: "unknown status", current: Status("bogus"), expected: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStatus(tt.current)
			if (err != nil) != tt.expectError {
				t.Fatalf("NextStatus() error = %v, expectError %v", err, tt.expectError)
			}
			if got != tt.expected {
				t.Errorf("NextStatus() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestShouldReconcile(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusProvisioning, true},
		{StatusUpgrading, true},
		{StatusDowngrading, true},
		{StatusMaintenance, true},
		{StatusActive, false},
		{StatusSuspended, false},
		{StatusDeleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := ShouldReconcile(tt.status); got != tt.want {
				t.Errorf("ShouldReconcile(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusDeleted, true},
		{StatusActive, false},
		{StatusSuspended, false},
		{StatusProvisioning, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := IsTerminalStatus(tt.status); got != tt.want {
				t.Errorf("IsTerminalStatus(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{name: "provisioning to active", from: StatusProvisioning, to: StatusActive, wantErr: false},
		{name: "active to suspended", from: StatusActive, to: StatusSuspended, wantErr: false},
		{name: "suspended to active", from: StatusSuspended, to: StatusActive, wantErr: false},
		{name: "active to deleted", from: StatusActive, to: StatusDeleted, wantErr: false},
		{name: "deleted to active invalid", from: StatusDeleted, to: StatusActive, wantErr: true},
		{name: "provisioning to suspended invalid", from: StatusProvisioning, to: StatusSuspended, wantErr: true},
		{name: "unknown source", from: Status("bogus"), to: StatusActive, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransition(%s, %s) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

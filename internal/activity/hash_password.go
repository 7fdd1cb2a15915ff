package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPasswordInput is the payload for the hash_password activity.
type HashPasswordInput struct {
	Password string `json:"password"`
}

// HashPasswordOutput carries the resulting bcrypt hash.
type HashPasswordOutput struct {
	Hash string `json:"hash"`
}

// HashPassword hashes a plaintext password with bcrypt at cost 12,
// run after validate_user has confirmed the password meets policy.
type HashPassword struct{}

// NewHashPassword constructs the hash_password activity.
func NewHashPassword() *HashPassword { return &HashPassword{} }

func (a *HashPassword) Name() string { return "hash_password" }

func (a *HashPassword) DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

func (a *HashPassword) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in HashPasswordInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode hash_password input: %w", err)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return json.Marshal(HashPasswordOutput{Hash: string(hash)})
}

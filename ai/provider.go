package ai

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrRateLimited      = errors.New("provider rate limited")
	ErrGenerationFailed = errors.New("generation failed")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a text-completion backend. Implementations must honour ctx
// cancellation and return ErrRateLimited or ErrGenerationFailed (possibly
// wrapped) on failure.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

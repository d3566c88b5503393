package memory

import (
	"context"

	"culturequiz-service/internal/domain"
)

// StaticTokenVerifier maps bearer tokens to user IDs from a fixed table.
// Stand-in for the real identity service in tests and demo mode.
type StaticTokenVerifier struct {
	tokens map[string]string
}

func NewStaticTokenVerifier(tokens map[string]string) *StaticTokenVerifier {
	return &StaticTokenVerifier{tokens: tokens}
}

func (v *StaticTokenVerifier) Verify(_ context.Context, token string) (string, error) {
	if userID, ok := v.tokens[token]; ok {
		return userID, nil
	}
	return "", domain.ErrUnauthorized
}

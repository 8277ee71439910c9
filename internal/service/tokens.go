package service

import (
	"strings"

	"github.com/google/uuid"
)

// TokenIssuer produces opaque, unguessable feedback tokens.
type TokenIssuer interface {
	Issue() (string, error)
}

// UUIDTokenIssuer joins two random UUIDs (244 random bits) into a URL-safe token.
type UUIDTokenIssuer struct{}

// Issue returns a new token.
func (UUIDTokenIssuer) Issue() (string, error) {
	first, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	second, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(first.String()+second.String(), "-", ""), nil
}

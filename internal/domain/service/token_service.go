package service

import "context"

// TokenVerifier checks a bearer credential and returns the user id it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

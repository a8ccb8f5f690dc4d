package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed, signed with an
	// unknown key, carries the wrong audience or issuer, or lacks a subject.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrKeySetUnavailable indicates the signing key set could not be
	// fetched from the identity provider. Callers surface this through the
	// same 401 path as token errors; "provider unreachable" is deliberately
	// indistinguishable from "bad token" at the HTTP boundary.
	ErrKeySetUnavailable = errors.New("signing key set unavailable")
)

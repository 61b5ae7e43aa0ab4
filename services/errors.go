package services

import "errors"

// Every failure the boundary layer needs to tell apart is a sentinel here;
// anything else is a wrapped persistence error.
var (
	ErrInvalidURL              = errors.New("original url is not a valid http(s) url")
	ErrInvalidAlias            = errors.New("alias must be 3-20 letters, digits, underscores or hyphens")
	ErrExpiryInPast            = errors.New("expiration date must be in the future")
	ErrAliasTaken              = errors.New("alias is already taken")
	ErrCodeGenerationExhausted = errors.New("could not generate a unique short code")
	ErrNotFound                = errors.New("short url not found")
)

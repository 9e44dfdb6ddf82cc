package pasetotoken

import (
	"errors"
	"fmt"
)

var (
	errSubjectMismatch  = errors.New("subject does not match uid claim")
	errUnknownTokenType = errors.New("unknown token type")
)

// ErrConfig reports unusable key material or settings.
type ErrConfig struct{ Msg string }

func (e ErrConfig) Error() string { return "paseto config error: " + e.Msg }

type ErrInvalidToken struct{ Err error }

func (e ErrInvalidToken) Error() string { return fmt.Sprintf("invalid token: %v", e.Err) }
func (e ErrInvalidToken) Unwrap() error { return e.Err }

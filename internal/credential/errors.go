package credential

import "errors"

var (
	// ErrCredentialConfig means the signing material (app ID, certificate) is missing.
	ErrCredentialConfig = errors.New("credential signing material is not configured")
	// ErrInvalidCredential is returned by Verify for bad signatures, expired or
	// mis-scoped tokens.
	ErrInvalidCredential = errors.New("invalid credential")
)

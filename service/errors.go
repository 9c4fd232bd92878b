// Package service implements the share-link access-control core: code
// issuing, link lifecycle, the access decision engine and the audit
// trail. Handlers in api/ stay thin and map these errors to HTTP.
package service

import "errors"

// Gate errors surfaced to requesters. Password mismatch is deliberately
// absent: a wrong password is answered with the decoy file, never with
// an error.
var (
	ErrNotFound           = errors.New("not found")
	ErrLinkExpired        = errors.New("link expired")
	ErrLinkExhausted      = errors.New("download limit reached")
	ErrLinkDisabled       = errors.New("link disabled by owner")
	ErrCodeInvalid        = errors.New("invalid access code")
	ErrCodeExpired        = errors.New("access code expired")
	ErrForbidden          = errors.New("not authorized")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

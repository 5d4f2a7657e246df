package domain

import "errors"

// Error kinds returned across component boundaries. Store failures are
// translated to ErrFetchFailed/ErrUpdateFailed at the service layer; raw
// driver errors never cross it.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("login required")
	ErrNotFound           = errors.New("not found")
	ErrFetchFailed        = errors.New("fetch failed")
	ErrUpdateFailed       = errors.New("update failed")
	ErrServiceUnavailable = errors.New("service unavailable")
)

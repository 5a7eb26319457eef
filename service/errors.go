// Package service holds the stores behind the API: credentials, files and
// forms, together with the ownership rules that guard them
package service

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateSlug      = errors.New("slug already taken")
	ErrNotFound           = errors.New("not found")
	ErrFormNotFound       = errors.New("form not found")
	ErrForbidden          = errors.New("forbidden")
	// ErrGone means the metadata row exists but its blob doesn't anymore
	ErrGone = errors.New("file content is gone")
)

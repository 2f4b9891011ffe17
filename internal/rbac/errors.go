package rbac

import "errors"

var (
	ErrNotFound   = errors.New("rbac: not found")
	ErrConflict   = errors.New("rbac: conflict")
	ErrValidation = errors.New("rbac: validation failed")
	// ErrForbidden guards system roles against deletion and protected-field edits.
	ErrForbidden = errors.New("rbac: forbidden")
	// ErrConfiguration marks wiring defects such as a samiti route without a type.
	ErrConfiguration    = errors.New("rbac: configuration error")
	ErrEmptyRequirement = errors.New("rbac: empty requirement")
)

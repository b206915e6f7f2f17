package domain

import "errors"

var (
	// ErrNotFound covers both a nonexistent resource and one owned by a
	// different session; callers must not be able to tell them apart.
	ErrNotFound = errors.New("not found")

	// ErrUnknownType is returned when a package references a type_id with
	// no matching PackageType row.
	ErrUnknownType = errors.New("unknown package type")

	// ErrInvalidSessionID is returned for session identifiers that are not
	// syntactically valid UUIDs. Unknown-but-valid identifiers are not an
	// error: they are the new-user case.
	ErrInvalidSessionID = errors.New("invalid session identifier")
)

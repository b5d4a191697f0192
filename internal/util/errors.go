package util

import "errors"

// Sentinel errors for the failure classes of the remediation pipeline
var (
	// ErrNotFound indicates an installation, library or manifest is absent
	ErrNotFound = errors.New("not found")

	// ErrParse indicates a malformed manifest or shortcut descriptor
	ErrParse = errors.New("parse error")

	// ErrNetwork indicates a CDN candidate could not be fetched
	ErrNetwork = errors.New("network error")

	// ErrValidation indicates downloaded bytes are not a usable image
	ErrValidation = errors.New("validation failed")

	// ErrIO indicates a locked or permission-denied file
	ErrIO = errors.New("i/o error")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)

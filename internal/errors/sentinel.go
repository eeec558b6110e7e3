package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates a project configuration failed schema validation.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a config file, resource root, or artifact was not found.
	ErrNotFound = errors.New("not found")

	// ErrMissingVariable indicates a template references a variable outside the closed set.
	// It is fatal to a release run: nothing is published against incomplete metadata.
	ErrMissingVariable = errors.New("missing template variable")

	// ErrAuth indicates a channel rejected the supplied credential.
	ErrAuth = errors.New("authentication rejected")

	// ErrRegistryRejected indicates the package registry refused the upload.
	ErrRegistryRejected = errors.New("registry rejected upload")

	// ErrUploadRejected indicates a marketplace refused the upload (quota or validation).
	ErrUploadRejected = errors.New("upload rejected")

	// ErrTimeout indicates a channel publish exceeded its deadline.
	ErrTimeout = errors.New("publish timed out")
)

package toast

import "errors"

var (
	// ErrInvalidImage is returned when an image reference cannot be used.
	ErrInvalidImage = errors.New("invalid image")
	// ErrToastNotFound is returned when a toast is not known to the platform.
	ErrToastNotFound = errors.New("toast not found")
)

package qrcode

import "errors"

// Error variables for QR code generation
var (
	// ErrEmptyContent is returned when the payload is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrCapacityExceeded is returned when the payload does not fit into the
	// largest symbol version at the chosen error-correction level.
	ErrCapacityExceeded = errors.New("content exceeds symbol capacity")
	// ErrorFailedToGenerateQRCode is returned when the QR code generation fails.
	ErrorFailedToGenerateQRCode = errors.New("failed to generate QR code")
	// ErrInvalidColor is returned when a color string cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")
	// ErrInvalidLevel is returned for an unknown error-correction level.
	ErrInvalidLevel = errors.New("invalid error correction level")
)

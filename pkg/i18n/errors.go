package i18n

import "errors"

var (
	ErrFailedToParseYAML     = errors.New("failed to parse YAML content")
	ErrFailedToReadDirectory = errors.New("failed to read translations directory")
	ErrFailedToReadFile      = errors.New("failed to read translation file")
	ErrLoadingCancelled      = errors.New("loading translations cancelled")
	ErrLanguageNotSupported  = errors.New("language not supported")
	ErrNilAdapter            = errors.New("translation adapter is nil")
)

package settings

import "errors"

// ErrInvalidPreset is returned when a preset document cannot be decoded.
var ErrInvalidPreset = errors.New("settings: invalid preset")

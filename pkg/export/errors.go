package export

import "errors"

var (
	// ErrUnavailable means the representation an action needs is absent.
	ErrUnavailable = errors.New("export: representation not available")
	// ErrExportDenied means the platform refused the clipboard write.
	ErrExportDenied = errors.New("export: denied by platform")
)

package file

import (
	"mime"
	"path/filepath"
	"strconv"
	"strings"
)

// File represents a downloaded file.
type File struct {
	Filename     string
	Size         int64
	MIMEType     string
	Extension    string
	AbsolutePath string // Local storage only
	URL          string // S3 storage only
}

// Location is where the file can be found: its local path or its URL.
func (f *File) Location() string {
	if f.AbsolutePath != "" {
		return f.AbsolutePath
	}
	return f.URL
}

var extensionsByType = map[string]string{
	"image/png":     ".png",
	"image/svg+xml": ".svg",
	"text/plain":    ".txt",
}

// ExtensionFor returns the file extension for a media type, ignoring
// parameters such as charset. Unknown types yield "".
//
// Example:
//
//	file.ExtensionFor("image/svg+xml;charset=utf-8") // ".svg"
func ExtensionFor(mediaType string) string {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return ""
	}
	return extensionsByType[mt]
}

// SanitizeFilename removes any path components and dangerous characters from a filename
// to prevent path traversal attacks and other security issues.
// Returns "unnamed" for empty or special directory references.
//
// Example:
//
//	safe := file.SanitizeFilename("../../../etc/passwd") // Returns "passwd"
//	safe = file.SanitizeFilename("C:\\Windows\\file.txt") // Returns "file.txt"
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}

	return filename
}

// candidateName returns the n-th name a browser would pick for a download
// when earlier ones are taken: "qrcode.png", "qrcode (1).png", ...
func candidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + " (" + strconv.Itoa(n) + ")" + ext
}

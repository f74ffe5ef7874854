// Package watch follows a text file and hands its content to a callback
// each time it changes. The qrstudio CLI uses it to re-render a QR code
// while the payload file is being edited.
package watch

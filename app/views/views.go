// Package views holds the page layout.
package views

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed layout.html
var files embed.FS

var layout = template.Must(template.ParseFS(files, "layout.html"))

// LayoutData fills the layout template.
type LayoutData struct {
	Title      string
	SocketPath string
}

// Layout renders the empty page: header with the user selector and an empty
// <main> region.
func Layout(data LayoutData) ([]byte, error) {
	if data.SocketPath == "" {
		data.SocketPath = "/ws"
	}
	var buf bytes.Buffer
	if err := layout.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

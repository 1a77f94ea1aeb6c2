// internal/panelstub/loader.go
package panelstub

import (
	"bytes"
	"embed"
	"io"
	"path"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templateFS embed.FS

// embedLoader serves pongo2 templates from the embedded templates directory.
type embedLoader struct{}

var _ pongo2.TemplateLoader = embedLoader{}

func (embedLoader) Abs(_, name string) string {
	return path.Join("templates", path.Base(name))
}

func (embedLoader) Get(p string) (io.Reader, error) {
	data, err := templateFS.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

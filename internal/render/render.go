// Package render converts synthesized documents into container formats and
// extracts text back out of them for scoring.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gzhole/sitbench/internal/synth"
)

// Renderer turns a document into file bytes and back into text. Extract need
// not return the original text exactly; scoring runs on whatever it yields.
type Renderer interface {
	Format() string
	Render(doc *synth.Document) ([]byte, error)
	Extract(data []byte) (string, error)
}

// Registry holds renderers keyed by format name.
type Registry struct {
	byName map[string]Renderer
}

func NewRegistry(rs ...Renderer) *Registry {
	reg := &Registry{byName: make(map[string]Renderer, len(rs))}
	for _, r := range rs {
		reg.byName[r.Format()] = r
	}
	return reg
}

// Default returns the txt and eml renderers.
func Default() *Registry {
	return NewRegistry(Text{}, EML{})
}

// Lookup returns the renderer for format.
func (r *Registry) Lookup(format string) (Renderer, error) {
	rr, ok := r.byName[strings.ToLower(strings.TrimPrefix(format, "."))]
	if !ok {
		return nil, fmt.Errorf("unknown render format %q (available: %s)", format, strings.Join(r.Formats(), ", "))
	}
	return rr, nil
}

// Formats lists registered format names, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Filename is the on-disk name of a rendered document.
func Filename(docID, format string) string {
	return docID + "." + format
}

// Text is the identity renderer.
type Text struct{}

func (Text) Format() string { return "txt" }

func (Text) Render(doc *synth.Document) ([]byte, error) { return []byte(doc.Text), nil }

func (Text) Extract(data []byte) (string, error) { return string(data), nil }

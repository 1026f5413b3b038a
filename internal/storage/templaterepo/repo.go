package templaterepo

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("template not found")
)

// Repo resolves a template by its file name.
type Repo interface {
	Get(ctx context.Context, name string) (Template, error)
	Exists(ctx context.Context, name string) bool
}

// Template is the raw text of a template file plus the placeholder names found in it.
type Template struct {
	Name        string   `json:"name"`
	Text        string   `json:"text"`
	Identifiers []string `json:"identifiers"`
}

// NewTemplate parses the placeholders of text once.
func NewTemplate(name, text string) Template {
	return Template{
		Name:        name,
		Text:        text,
		Identifiers: identifiers(text),
	}
}

// Package prompt handles pricing prompt generation and management
package prompt

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/rs/zerolog"
)

// notSet replaces empty charges in the rendered prompt.
const notSet = "Not set"

// Fields are the trading terms embedded in the prompt.
type Fields struct {
	Material        string
	TreatmentCharge string
	RefiningCharge  string
	DeliveryPoint   string
}

// Template renders prompts from a text/template source
type Template struct {
	t *template.Template
}

// Default returns the built-in template
func Default() *Template {
	return defaultTemplate
}

var defaultTemplate = mustParse(defaultText)

func mustParse(text string) *Template {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse compiles a custom template. It must reference at least one of the
// Fields so a typo'd file is caught early.
func Parse(text string) (*Template, error) {
	if !strings.Contains(text, "{{") {
		return nil, fmt.Errorf("prompt template has no fields")
	}
	t, err := template.New("pricing").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Template{t: t}, nil
}

// Load reads a custom template from path. An empty path returns Default().
func Load(path string) (*Template, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return Parse(string(data))
}

// LoadWithFallback returns the custom template at path, or the default one
// if it cannot be loaded.
func LoadWithFallback(path string, log zerolog.Logger) *Template {
	t, err := Load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("using default prompt instead")
		return Default()
	}
	return t
}

// Render fills the template. Empty charges read "Not set".
func (t *Template) Render(f Fields) (string, error) {
	if f.TreatmentCharge == "" {
		f.TreatmentCharge = notSet
	}
	if f.RefiningCharge == "" {
		f.RefiningCharge = notSet
	}
	var b strings.Builder
	if err := t.t.Execute(&b, f); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

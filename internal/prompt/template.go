// Package prompt loads the pass templates and assembles the final prompt
// text sent to the backend. Placeholders are literal {{NAME}} tokens replaced
// by plain string substitution; note text is injected verbatim, so no
// template engine with its own escaping rules is involved.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/cylon-model-15/shifty/internal/apperr"
)

// Placeholder names declared by the two pass templates.
const (
	PlaceholderRawNotes      = "{{RAW_NOTES}}"
	PlaceholderObservedFacts = "{{OBSERVED_FACTS}}"
	PlaceholderStyleGuide    = "{{OPTIONAL_STYLE_GUIDE}}"
	PlaceholderShorthand     = "{{SHORTHAND_DEFINITIONS}}"
)

// Template is a loaded prompt template whose declared placeholders have been
// verified present. Verification happens at load time so a bad template fails
// fast, before any backend call.
type Template struct {
	path         string
	text         string
	placeholders []string
}

// Load reads a template file and verifies every declared placeholder occurs
// in it. A missing file or a missing placeholder is a configuration error.
func Load(path string, placeholders ...string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperr.ConfigError{Path: path, Reason: fmt.Sprintf("cannot read prompt template: %v", err)}
	}
	text := string(data)
	for _, ph := range placeholders {
		if !strings.Contains(text, ph) {
			return nil, &apperr.ConfigError{Path: path, Placeholder: ph}
		}
	}
	return &Template{path: path, text: text, placeholders: placeholders}, nil
}

// Render substitutes placeholder values into the template text. Values for
// undeclared placeholders are ignored.
func (t *Template) Render(values map[string]string) string {
	out := t.text
	for _, ph := range t.placeholders {
		out = strings.ReplaceAll(out, ph, values[ph])
	}
	return out
}

// Path returns the file the template was loaded from.
func (t *Template) Path() string { return t.path }

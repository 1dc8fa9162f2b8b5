package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cylon-model-15/shifty/internal/apperr"
)

// LoadShorthand reads the shorthand file: a flat JSON object mapping short
// codes to expansion text. A missing file is treated as absent (nil map);
// content that is not a flat string-to-string object is a configuration
// error, not a lint violation.
func LoadShorthand(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &apperr.ConfigError{Path: path, Reason: fmt.Sprintf("cannot read shorthand file: %v", err)}
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &apperr.ConfigError{Path: path, Reason: "shorthand must be a flat string-to-string JSON object"}
	}
	return m, nil
}

// RenderShorthand renders the mapping as one definition per line, sorted by
// code so the assembled prompt is deterministic.
func RenderShorthand(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var sb strings.Builder
	for _, code := range codes {
		fmt.Fprintf(&sb, "- %s: %s\n", code, m[code])
	}
	return strings.TrimRight(sb.String(), "\n")
}

// LoadOptionalText reads a free-form optional file such as the style guide,
// returning the empty string when the file is absent.
func LoadOptionalText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", &apperr.FSError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}

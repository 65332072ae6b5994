package config

import (
	"encoding/json"
	"strings"

	"github.com/arthur-debert/stagehand/pkg/errors"
)

// StripJSONC rewrites JSONC source into plain JSON: line comments (// and
// #), block comments, and trailing commas are removed. The scanner is
// string-aware, so comment markers and commas inside string literals
// survive, including protocol separators like "http://".
func StripJSONC(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	inString := false
	escaped := false
	i := 0
	for i < len(src) {
		c := src[i]

		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}

		switch {
		case c == '"':
			inString = true
			out.WriteByte(c)
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
			if i > len(src) {
				i = len(src)
			}
		case c == ',':
			// Drop the comma when the next non-whitespace closes a scope.
			j := i + 1
			for j < len(src) && isJSONSpace(src[j]) {
				j++
			}
			if j < len(src) && (src[j] == '}' || src[j] == ']') {
				i++
				continue
			}
			out.WriteByte(c)
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// parseJSONC decodes JSONC content into a raw tree. Empty content (or
// comments only) reads as "no config" with a nil result.
func parseJSONC(content []byte) (any, error) {
	text := strings.TrimSpace(StripJSONC(string(content)))
	if text == "" {
		return nil, nil
	}

	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid JSONC syntax")
	}
	switch data.(type) {
	case map[string]any, []any, nil:
		return data, nil
	}
	return nil, errors.Newf(errors.ErrConfigParse, "invalid config root: expected object or list")
}

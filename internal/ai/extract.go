package ai

import "errors"

var errNoJSON = errors.New("no json object in response")

// extractJSON pulls the first balanced {...} block out of a chat reply.
// Models pad JSON with prose and markdown fences no matter how firmly the
// prompt forbids it, so the parser hunts for the object instead.
func extractJSON(s string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], nil
				}
			}
		}
	}
	return "", errNoJSON
}

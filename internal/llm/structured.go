package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONArray pulls a JSON array out of raw model output. It strips a
// surrounding code fence, tries the whole remaining text, and then retries on
// the first balanced [ ... ] span. Output that is already valid JSON of any
// other shape is rejected without the span search. The elements are returned undecoded so
// callers can coerce them one at a time.
func ExtractJSONArray(raw string) ([]json.RawMessage, error) {
	cleaned := strings.TrimSpace(StripCodeFences(raw))
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty output", ErrInvalidOutput)
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &items); err == nil {
		return items, nil
	}
	if cleaned[0] != '[' && json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("%w: response is JSON but not an array", ErrInvalidOutput)
	}

	span := extractJSONArrayBlock(cleaned)
	if span == "" {
		return nil, fmt.Errorf("%w: no JSON array found in response", ErrInvalidOutput)
	}
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		// Models sometimes annotate entries with comments; give it one more go.
		if err2 := json.Unmarshal([]byte(stripJSONComments(span)), &items); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}
	return items, nil
}

// StripCodeFences removes a leading ``` marker (with or without a language
// tag) and a trailing ``` marker. Text between is left alone.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		} else {
			rest = strings.TrimLeftFunc(rest, isLangTagRune)
		}
		s = rest
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isLangTagRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// extractJSONArrayBlock finds the first balanced [ ... ] block in the text,
// ignoring brackets inside string literals.
func extractJSONArrayBlock(s string) string {
	start := strings.IndexByte(s, '[')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}

// stripJSONComments removes C-style comments outside of JSON string values.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}
		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}
		if inString {
			b.WriteByte(c)
			continue
		}

		// Line comment: skip to end of line
		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}

		// Block comment: skip to closing */
		if c == '/' && i+1 < len(s) && s[i+1] == '*' {
			i += 2
			for i+1 < len(s) {
				if s[i] == '*' && s[i+1] == '/' {
					i++
					break
				}
				i++
			}
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

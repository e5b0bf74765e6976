// Package parser extracts structured action descriptors from raw model output.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/starford/notechat/internal/action"
)

// fenceRe matches markdown fence lines only, so backticks inside JSON string
// values survive.
var fenceRe = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z]*[ \t]*$")

// Parse extracts the actions carried by raw. An embedded JSON array is tried
// first, then a single JSON object. It returns nil when nothing usable is
// found, in which case raw is a plain conversational reply.
//
// Elements without an "action" key are dropped; field validity is left to
// action.Validate.
func Parse(raw string) []action.Descriptor {
	text := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))
	if text == "" {
		return nil
	}

	candidates := findJSONCandidates(text)

	for _, c := range candidates {
		if c[0] != '[' {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(c), &items); err != nil {
			continue
		}
		var out []action.Descriptor
		for _, item := range items {
			if d, ok := decode(item); ok {
				out = append(out, d)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	for _, c := range candidates {
		if c[0] != '{' {
			continue
		}
		if d, ok := decode([]byte(c)); ok {
			return []action.Descriptor{d}
		}
	}

	// An unbalanced bracket in the prose can swallow the object; fall back to
	// the widest brace span.
	first, last := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		if d, ok := decode([]byte(text[first : last+1])); ok {
			return []action.Descriptor{d}
		}
	}
	return nil
}

func decode(data []byte) (action.Descriptor, bool) {
	var d action.Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return action.Descriptor{}, false
	}
	d.Kind = action.Kind(strings.TrimSpace(string(d.Kind)))
	if d.Kind == "" {
		return action.Descriptor{}, false
	}
	return d, true
}

// findJSONCandidates returns every top-level bracketed span of s ({...} or
// [...]) in order of appearance. Quotes are only tracked inside a span, so
// apostrophes and quotation marks in surrounding prose do not desynchronise
// the scan. A mismatched closer abandons the current span.
func findJSONCandidates(s string) []string {
	var (
		candidates []string
		stack      []byte
		start      = -1
		inString   bool
		escape     bool
	)

	for i := 0; i < len(s); i++ {
		b := s[i]

		if len(stack) > 0 {
			if escape {
				escape = false
				continue
			}
			if inString {
				switch b {
				case '\\':
					escape = true
				case '"':
					inString = false
				}
				continue
			}
			if b == '"' {
				inString = true
				continue
			}
		}

		switch b {
		case '{', '[':
			if len(stack) == 0 {
				start = i
			}
			stack = append(stack, closerFor(b))
		case '}', ']':
			if len(stack) == 0 {
				continue
			}
			if stack[len(stack)-1] != b {
				stack = stack[:0]
				start = -1
				continue
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 && start >= 0 {
				candidates = append(candidates, s[start:i+1])
				start = -1
			}
		}
	}

	return candidates
}

func closerFor(b byte) byte {
	if b == '{' {
		return '}'
	}
	return ']'
}

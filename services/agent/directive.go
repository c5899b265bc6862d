package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"bengkelbot/models"

	"github.com/google/uuid"
)

// Some providers emit tool invocations as plain text instead of using the
// structured channel. Two legacy shapes are decoded here into the same
// ToolCall value the rest of the loop consumes:
//
//	<getPrice>{"service": "Repaint", "size": "M"}</getPrice>
//	tool_code print(getPrice(service="Repaint", size="M"))

var (
	xmlDirectivePattern = regexp.MustCompile(`(?s)<([A-Za-z_][A-Za-z0-9_]*)>\s*(\{.*?\})\s*</([A-Za-z_][A-Za-z0-9_]*)>`)
	toolCodeMarker      = regexp.MustCompile("(?s)tool_code\\s*`*\\s*print\\(")
	codeFencePattern    = regexp.MustCompile("(?s)```(?:tool_code)?|```")
)

// ParseDirective scans raw text for a textual tool directive and reconstructs
// the call. The second return is false when no directive is present.
func ParseDirective(text string) (*models.ToolCall, bool) {
	if call, ok := parseXMLDirective(text); ok {
		return call, true
	}
	if call, ok := parseToolCodeDirective(text); ok {
		return call, true
	}
	return nil, false
}

// SanitizeDirectives strips directive syntax out of visible text so it never
// leaks to the end user. Returns the trimmed remainder, possibly empty.
func SanitizeDirectives(text string) string {
	out := xmlDirectivePattern.ReplaceAllString(text, "")
	for {
		loc := toolCodeMarker.FindStringIndex(out)
		if loc == nil {
			break
		}
		// Remove from the marker through the matching close of print(...).
		end := scanBalanced(out, loc[1]-1)
		if end < 0 {
			out = out[:loc[0]]
			break
		}
		out = out[:loc[0]] + out[end:]
	}
	out = codeFencePattern.ReplaceAllString(out, "")
	out = strings.ReplaceAll(out, "tool_code", "")
	return strings.TrimSpace(out)
}

func parseXMLDirective(text string) (*models.ToolCall, bool) {
	for _, m := range xmlDirectivePattern.FindAllStringSubmatch(text, -1) {
		// RE2 has no backreferences; verify the tags match here.
		if m[1] != m[3] {
			continue
		}
		args := map[string]any{}
		if err := json.Unmarshal([]byte(m[2]), &args); err != nil {
			continue
		}
		return &models.ToolCall{ID: uuid.New().String(), Name: m[1], Args: args}, true
	}
	return nil, false
}

func parseToolCodeDirective(text string) (*models.ToolCall, bool) {
	loc := toolCodeMarker.FindStringIndex(text)
	if loc == nil {
		return nil, false
	}
	// loc[1]-1 points at the opening paren of print(...).
	inner, ok := balancedBody(text, loc[1]-1)
	if !ok {
		return nil, false
	}
	inner = strings.TrimSpace(inner)

	open := strings.IndexByte(inner, '(')
	if open <= 0 || !strings.HasSuffix(inner, ")") {
		return nil, false
	}
	name := strings.TrimSpace(inner[:open])
	if !isIdentifier(name) {
		return nil, false
	}
	argsRaw := inner[open+1 : len(inner)-1]

	return &models.ToolCall{
		ID:   uuid.New().String(),
		Name: name,
		Args: parseDirectiveArgs(argsRaw),
	}, true
}

// parseDirectiveArgs handles the permissive key=value form with a JSON
// fallback: a bare JSON object is used wholesale, otherwise each top-level
// comma-separated k=v pair is decoded individually (JSON value first, raw
// string second).
func parseDirectiveArgs(raw string) map[string]any {
	raw = strings.TrimSpace(raw)
	args := map[string]any{}
	if raw == "" {
		return args
	}

	if strings.HasPrefix(raw, "{") {
		if err := json.Unmarshal([]byte(raw), &args); err == nil {
			return args
		}
	}

	for _, part := range splitTopLevel(raw) {
		eq := topLevelIndex(part, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(part[:eq])
		val := strings.TrimSpace(part[eq+1:])
		if key == "" {
			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(val), &decoded); err == nil {
			args[key] = decoded
			continue
		}
		args[key] = strings.Trim(val, `"'`)
	}
	return args
}

// splitTopLevel splits on commas that are not nested inside quotes, braces,
// brackets, or parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote && (i == 0 || s[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// topLevelIndex finds the first occurrence of sep outside quotes and nesting.
func topLevelIndex(s string, sep byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote && (i == 0 || s[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		default:
			if c == sep && depth == 0 {
				return i
			}
		}
	}
	return -1
}

// balancedBody returns the contents of the parenthesized group opening at
// position open.
func balancedBody(s string, open int) (string, bool) {
	end := scanBalanced(s, open)
	if end < 0 {
		return "", false
	}
	return s[open+1 : end-1], true
}

// scanBalanced returns the index just past the paren group opening at
// position open, or -1 when unbalanced.
func scanBalanced(s string, open int) int {
	if open >= len(s) || s[open] != '(' {
		return -1
	}
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote && s[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

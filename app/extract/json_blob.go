package extract

import (
	"regexp"
	"strings"
)

// braceBlock returns the balanced {...} block starting at the first '{' at or
// after start, or "" when braces never balance. String literals are honored
// so braces inside quoted values don't throw off the depth count.
func braceBlock(s string, start int) string {
	open := strings.IndexByte(s[start:], '{')
	if open < 0 {
		return ""
	}
	open += start

	depth := 0
	var quote byte
	escaped := false

	for i := open; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[open : i+1]
			}
		}
	}

	return ""
}

var bareKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// coerceJSON turns a JavaScript-ish object literal into something
// encoding/json will accept: bare keys get quoted and single-quoted strings
// become double-quoted. Best effort; the caller treats parse failures as a
// non-match.
func coerceJSON(s string) string {
	s = bareKeyRe.ReplaceAllString(s, `$1"$2":`)
	s = strings.ReplaceAll(s, "'", `"`)
	return s
}

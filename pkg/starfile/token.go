package starfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errUnterminatedQuote = errors.New("unterminated quoted value")

// tokenize splits a line on whitespace. A value may be enclosed in single or double quotes
// to carry spaces; the closing quote must be followed by whitespace or the end of the line.
func tokenize(s string) ([]string, error) {
	var out []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return out, nil
		}
		if q := s[0]; q == '\'' || q == '"' {
			end := closingQuote(s, q)
			if end < 0 {
				return nil, errUnterminatedQuote
			}
			out = append(out, s[1:end])
			s = s[end+1:]
			continue
		}
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			return append(out, s), nil
		}
		out = append(out, s[:end])
		s = s[end:]
	}
}

func closingQuote(s string, q byte) int {
	for i := 1; i < len(s); i++ {
		if s[i] == q && (i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\t') {
			return i
		}
	}
	return -1
}

// ErrUnquotable is returned for a value no quoting can write back unchanged: one holding a
// line break, or both quote characters followed by whitespace.
var ErrUnquotable = errors.New("value cannot be quoted")

// quote returns v in a form tokenize reads back unchanged.
func quote(v string) (string, error) {
	if v == "" {
		return `""`, nil
	}
	if strings.ContainsAny(v, "\r\n") {
		return "", fmt.Errorf("%w: %q", ErrUnquotable, v)
	}
	if !strings.ContainsAny(v, " \t") && !strings.ContainsAny(v[:1], `'"_#`) && !isKeyword(v) {
		return v, nil
	}
	switch {
	case !closesQuote(v, '"'):
		return `"` + v + `"`, nil
	case !closesQuote(v, '\''):
		return "'" + v + "'", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnquotable, v)
}

// closesQuote reports whether q occurs in v followed by whitespace, which would end a value
// quoted with q early.
func closesQuote(v string, q byte) bool {
	for i := 0; i+1 < len(v); i++ {
		if v[i] == q && (v[i+1] == ' ' || v[i+1] == '\t') {
			return true
		}
	}
	return false
}

func isKeyword(v string) bool {
	return v == "loop_" || strings.HasPrefix(v, "data_")
}

func itoa(n int) string { return strconv.Itoa(n) }

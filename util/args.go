package util

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TrimQuotes strips every leading and trailing double quote from s.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// IsQuoted reports whether s is a quoted token as produced by the tokenizer.
func IsQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// Literal returns the literal value of an argument token: a quoted token loses
// one pair of quotes and has its escapes decoded, a bare token is returned as is.
func Literal(s string) string {
	if !IsQuoted(s) {
		return s
	}
	return Unescape(s[1 : len(s)-1])
}

// Unescape decodes backslash escapes (\t, \n, \\, \", \uXXXX, ...).
// A backslash before any other character yields that character, so `\,`
// decodes to `,`. A trailing lone backslash is kept.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		if s[0] != '\\' {
			r, size := utf8.DecodeRuneInString(s)
			b.WriteRune(r)
			s = s[size:]
			continue
		}
		if len(s) == 1 {
			b.WriteByte('\\')
			break
		}
		value, _, tail, err := strconv.UnquoteChar(s, '"')
		if err != nil {
			r, size := utf8.DecodeRuneInString(s[1:])
			b.WriteRune(r)
			s = s[1+size:]
			continue
		}
		b.WriteRune(value)
		s = tail
	}
	return b.String()
}

// ParseOrder parses index arguments into a check order over n elements.
// With no args the order is 0..n-1. Otherwise every arg must be an integer in
// [0, n) and the args replace the leading entries of the default order.
func ParseOrder(args []string, n int) ([]int, error) {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i, arg := range args {
		if i >= n {
			return nil, fmt.Errorf("too many order arguments: %d for %d values", len(args), n)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("order argument %q is not an integer", arg)
		}
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("order argument %d out of range [0, %d)", idx, n)
		}
		order[i] = idx
	}
	return order, nil
}

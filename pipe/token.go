package pipe

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PipeToken separates stages.
const PipeToken = "|"

// Tokenize splits text into tokens. A double-quoted run holding at least one
// character and no newline is a single token with its quotes kept. An
// unquoted '|' is a token of its own. Any other run of non-space characters
// is a token. Escapes are left for converters to decode.
func Tokenize(text string) []string {
	var tokens []string
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '|':
			tokens = append(tokens, PipeToken)
			i += size
		case r == '"':
			if end := quotedEnd(text, i); end > 0 {
				tokens = append(tokens, text[i:end])
				i = end
				continue
			}
			end := bareEnd(text, i)
			tokens = append(tokens, text[i:end])
			i = end
		default:
			end := bareEnd(text, i)
			tokens = append(tokens, text[i:end])
			i = end
		}
	}
	return tokens
}

// quotedEnd returns the index just past the quote closing the run opened at
// start, or -1 when the run is not a valid quoted token.
func quotedEnd(text string, start int) int {
	// the first character after the opening quote is always content
	body := start + 1
	if body >= len(text) || text[body] == '\n' {
		return -1
	}
	_, size := utf8.DecodeRuneInString(text[body:])
	rest := text[body+size:]
	closing := strings.IndexAny(rest, "\"\n")
	if closing < 0 || rest[closing] == '\n' {
		return -1
	}
	return body + size + closing + 1
}

func bareEnd(text string, start int) int {
	i := start
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) || r == '|' {
			break
		}
		i += size
	}
	return i
}

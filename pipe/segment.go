package pipe

import "strings"

// Stage is one converter invocation: the converter name followed by its
// positional arguments, exactly as tokenized.
type Stage []string

// Name returns the converter name, or "" for an empty stage.
func (s Stage) Name() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Args returns the arguments following the converter name.
func (s Stage) Args() []string {
	if len(s) < 2 {
		return nil
	}
	return s[1:]
}

func (s Stage) String() string {
	return strings.Join(s, " ")
}

// Expression is a parsed pipe expression. Expressions returned by Parse are
// shared through the engine cache and must not be modified.
type Expression []Stage

func (e Expression) String() string {
	parts := make([]string, len(e))
	for i, s := range e {
		parts[i] = s.String()
	}
	return strings.Join(parts, " | ")
}

// Segment groups tokens into stages. A PipeToken closes the current stage;
// empty tokens and stages without tokens are dropped.
func Segment(tokens []string) Expression {
	var (
		expr    Expression
		current Stage
	)
	for _, tok := range tokens {
		switch tok {
		case "":
			continue
		case PipeToken:
			if len(current) > 0 {
				expr = append(expr, current)
			}
			current = nil
		default:
			current = append(current, tok)
		}
	}
	if len(current) > 0 {
		expr = append(expr, current)
	}
	return expr
}

// Parse tokenizes and segments text.
func Parse(text string) Expression {
	return Segment(Tokenize(text))
}

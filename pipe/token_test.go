package pipe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"quoted run", `A "b c" D`, []string{"A", `"b c"`, "D"}},
		{"pipes with spaces", `A | B`, []string{"A", "|", "B"}},
		{"pipes without spaces", `A|B`, []string{"A", "|", "B"}},
		{"double pipe", `A||B`, []string{"A", "|", "|", "B"}},
		{"pipe inside quotes", `Join "|"`, []string{"Join", `"|"`}},
		{"quoted arg with trailing pipe", `Split ","|Join "-"`, []string{"Split", `","`, "|", "Join", `"-"`}},
		{"escaped quote stays literal", `Split "\"" | X`, []string{"Split", `"\"`, `"`, "|", "X"}},
		{"empty quotes are bare", `ConstValue ""`, []string{"ConstValue", `""`}},
		{"unterminated quote", `A "bc`, []string{"A", `"bc`}},
		{"quote does not cross newline", "A \"b\nc\"", []string{"A", `"b`, `c"`}},
		{"quote inside bare run", `a"b c"`, []string{`a"b`, `c"`}},
		{"tabs and unicode spaces", "A\tB\u00a0C\u2003D", []string{"A", "B", "C", "D"}},
		{"leading and trailing space", "  A  ", []string{"A"}},
		{"empty", "", nil},
		{"only spaces", "   ", nil},
		{"unicode", `Const "héllo wörld"`, []string{"Const", `"héllo wörld"`}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Tokenize(tc.in)); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestSegment_EmptyStagesCollapse(t *testing.T) {
	want := Expression{{"A"}, {"B"}}
	for _, in := range []string{"A | B", "A | | B", "A || B", "A|B", "| A | B |", "A |\t| B"} {
		if diff := cmp.Diff(want, Parse(in)); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestSegment_DropsEmptyTokens(t *testing.T) {
	got := Segment([]string{"", "A", "", "x", "|", "", "|", "B"})
	want := Expression{{"A", "x"}, {"B"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "  ", "|", " | | "} {
		if got := Parse(in); len(got) != 0 {
			t.Errorf("Parse(%q) = %v, want no stages", in, got)
		}
	}
}

func TestStage_Accessors(t *testing.T) {
	s := Stage{"Join", `"-"`, "1"}
	if s.Name() != "Join" {
		t.Errorf("Name() = %q", s.Name())
	}
	if diff := cmp.Diff([]string{`"-"`, "1"}, s.Args()); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
	if (Stage{}).Name() != "" || (Stage{"X"}).Args() != nil {
		t.Error("expected empty name and nil args")
	}
}

func TestExpression_String(t *testing.T) {
	expr := Parse(`Split ","|Join   "-"`)
	if got := expr.String(); got != `Split "," | Join "-"` {
		t.Errorf("String() = %q", got)
	}
	if diff := cmp.Diff(expr, Parse(expr.String())); diff != "" {
		t.Errorf("re-parse mismatch (-want +got):\n%s", diff)
	}
}

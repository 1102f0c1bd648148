package redact

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/wudi/pdfredact/geo"
)

// lineTokens places words left to right on one reading line, 100pt
// apart with 90pt wide boxes, so default merge tolerance keeps their
// regions distinct.
func lineTokens(y float64, words ...string) []Token {
	out := make([]Token, len(words))
	for i, w := range words {
		x := float64(i) * 100
		out[i] = Token{
			Text: w,
			Box:  geo.Rect{X0: x, Y0: y, X1: x + 90, Y1: y + 12},
		}
	}
	return out
}

func TestNormalizeOffsetsStrictlyIncreasing(t *testing.T) {
	pt := Normalize(0, lineTokens(700, "Account", "123456789", "Thank", "you"), DefaultOptions())

	if pt.Buffer != "Account 123456789 Thank you" {
		t.Fatalf("buffer = %q", pt.Buffer)
	}
	prevEnd := -1
	for i, tok := range pt.Tokens {
		if tok.Start <= prevEnd {
			t.Fatalf("token %d offsets overlap: start=%d prevEnd=%d", i, tok.Start, prevEnd)
		}
		if tok.End <= tok.Start {
			t.Fatalf("token %d has empty range", i)
		}
		if got := string([]rune(pt.Buffer)[tok.Start:tok.End]); got != tok.Text {
			t.Fatalf("token %d range decodes to %q, want %q", i, got, tok.Text)
		}
		prevEnd = tok.End
	}
	if last := pt.Tokens[len(pt.Tokens)-1]; last.End != utf8.RuneCountInString(pt.Buffer) {
		t.Fatalf("offsets do not cover the buffer: end=%d len=%d", last.End, utf8.RuneCountInString(pt.Buffer))
	}
}

func TestNormalizeReordersDetectionOrder(t *testing.T) {
	// OCR returns tokens in detection order; here bottom line first and
	// each line right to left.
	var tokens []Token
	bottom := lineTokens(100, "third", "fourth")
	top := lineTokens(700, "first", "second")
	tokens = append(tokens, bottom[1], bottom[0], top[1], top[0])

	pt := Normalize(0, tokens, DefaultOptions())
	if pt.Buffer != "first second third fourth" {
		t.Fatalf("reading order wrong: %q", pt.Buffer)
	}
}

func TestNormalizeLineToleranceGroupsJitteryBaselines(t *testing.T) {
	// Two words whose vertical centers differ by less than half the
	// median height (12pt boxes, so tolerance 6pt) stay on one line.
	a := Token{Text: "left", Box: geo.Rect{X0: 0, Y0: 500, X1: 50, Y1: 512}}
	b := Token{Text: "right", Box: geo.Rect{X0: 60, Y0: 504, X1: 120, Y1: 516}}

	pt := Normalize(0, []Token{b, a}, DefaultOptions())
	if pt.Buffer != "left right" {
		t.Fatalf("jittery baseline split into lines: %q", pt.Buffer)
	}

	// Push the second word a full line away and order must flip to
	// top-to-bottom.
	b.Box = geo.Rect{X0: 60, Y0: 520, X1: 120, Y1: 532}
	pt = Normalize(0, []Token{a, b}, DefaultOptions())
	if pt.Buffer != "right left" {
		t.Fatalf("separate lines not split: %q", pt.Buffer)
	}
}

func TestNormalizeDropsBlankTokens(t *testing.T) {
	tokens := lineTokens(700, "keep")
	tokens = append(tokens, Token{Text: "   ", Box: geo.Rect{X0: 200, Y0: 700, X1: 210, Y1: 712}})
	pt := Normalize(3, tokens, DefaultOptions())
	if len(pt.Tokens) != 1 || pt.Buffer != "keep" {
		t.Fatalf("blank token survived: %+v", pt)
	}
	if pt.Tokens[0].Page != 3 {
		t.Fatalf("page index not stamped: %+v", pt.Tokens[0])
	}
}

func TestNormalizeEmptyPage(t *testing.T) {
	pt := Normalize(1, nil, DefaultOptions())
	if pt.Buffer != "" || len(pt.Tokens) != 0 {
		t.Fatalf("empty page should normalize to empty PageText: %+v", pt)
	}
}

func TestNormalizeMultiByteOffsetsAreRuneBased(t *testing.T) {
	pt := Normalize(0, lineTokens(700, "Müller", "Straße"), DefaultOptions())
	if !strings.Contains(pt.Buffer, " ") {
		t.Fatalf("separator missing: %q", pt.Buffer)
	}
	second := pt.Tokens[1]
	if second.Start != 7 { // "Müller" is 6 runes plus one separator
		t.Fatalf("second token start = %d, want 7", second.Start)
	}
	if got := string([]rune(pt.Buffer)[second.Start:second.End]); got != "Straße" {
		t.Fatalf("rune slice = %q", got)
	}
}

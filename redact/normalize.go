package redact

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Normalize converts extractor output into a PageText: tokens sorted
// into left-to-right, top-to-bottom reading order, concatenated with a
// single space separator, with strictly increasing rune offsets assigned
// to each token.
//
// Digital extraction usually arrives in reading order already; OCR
// returns tokens in detection order, so ordering is reconstructed from
// the boxes. Tokens are grouped into reading lines by vertical center
// (tolerance: half the median token height unless overridden), then
// sorted by horizontal start within each line. The separator between
// tokens occupies an offset of its own but maps to no token.
func Normalize(page int, tokens []Token, opts Options) PageText {
	kept := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		t.Page = page
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return PageText{Page: page}
	}

	tol := opts.LineTolerance
	if tol <= 0 {
		tol = medianHeight(kept) / 2
	}
	ordered := readingOrder(kept, tol)

	var buf strings.Builder
	off := 0
	for i := range ordered {
		if i > 0 {
			buf.WriteByte(' ')
			off++
		}
		ordered[i].Start = off
		off += utf8.RuneCountInString(ordered[i].Text)
		ordered[i].End = off
		buf.WriteString(ordered[i].Text)
	}

	return PageText{Page: page, Buffer: buf.String(), Tokens: ordered}
}

func medianHeight(tokens []Token) float64 {
	heights := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		if h := t.Box.Height(); h > 0 {
			heights = append(heights, h)
		}
	}
	if len(heights) == 0 {
		return 0
	}
	sort.Float64s(heights)
	return heights[len(heights)/2]
}

// readingOrder groups tokens into lines top-to-bottom and orders each
// line left-to-right. A token joins the current line when its vertical
// center lies within tol of the line's running mean center; this keeps
// slightly jittery OCR baselines on one line without folding adjacent
// lines together.
func readingOrder(tokens []Token, tol float64) []Token {
	byTop := make([]Token, len(tokens))
	copy(byTop, tokens)
	// Page space has the origin at the bottom, so the top of the page is
	// the largest center Y.
	sort.SliceStable(byTop, func(i, j int) bool {
		return byTop[i].Box.CenterY() > byTop[j].Box.CenterY()
	})

	type line struct {
		tokens []Token
		sum    float64
	}
	var lines []*line
	var cur *line
	for _, t := range byTop {
		c := t.Box.CenterY()
		if cur != nil {
			mean := cur.sum / float64(len(cur.tokens))
			if mean-c <= tol {
				cur.tokens = append(cur.tokens, t)
				cur.sum += c
				continue
			}
		}
		cur = &line{tokens: []Token{t}, sum: c}
		lines = append(lines, cur)
	}

	out := make([]Token, 0, len(tokens))
	for _, ln := range lines {
		sort.SliceStable(ln.tokens, func(i, j int) bool {
			return ln.tokens[i].Box.X0 < ln.tokens[j].Box.X0
		})
		out = append(out, ln.tokens...)
	}
	return out
}

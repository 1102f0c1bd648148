package extract

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/wudi/pdfredact/geo"
	"github.com/wudi/pdfredact/redact"
)

// Glyph grouping heuristics, in fractions of the font size. The glyph
// stream carries baselines and advance widths but no explicit word
// boundaries, so words are rebuilt from horizontal gaps.
const (
	wordGapRatio    = 0.3  // gap wider than this starts a new word
	backtrackRatio  = 0.5  // a jump this far left means a new text run
	baselineRatio   = 0.2  // max baseline jitter within one word
	ascentRatio     = 0.8  // box extent above the baseline
	descentRatio    = 0.25 // box extent below the baseline
	defaultFontSize = 12.0
)

// Digital extracts tokens from a page's embedded text layer using the
// glyph positions reported by the parser.
type Digital struct {
	mu sync.Mutex
	r  *pdf.Reader
}

// NewDigital wraps an open pdf.Reader. The reader is shared and its
// page parsing is serialized internally.
func NewDigital(r *pdf.Reader) *Digital {
	return &Digital{r: r}
}

func (d *Digital) Source() redact.Source { return redact.SourceDigital }

// Extract returns the word tokens of the zero-based page. The underlying
// parser panics on some malformed content streams; that is converted
// into a per-page error so one bad page cannot take down the run.
func (d *Digital) Extract(ctx context.Context, page int) (tokens []redact.Token, err error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract: text layer of page %d: %v", page, r)
		}
	}()

	p := d.r.Page(page + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("extract: page %d not found", page)
	}

	content := p.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{
			s:        t.S,
			x:        t.X,
			y:        t.Y,
			w:        t.W,
			fontSize: t.FontSize,
		})
	}
	return groupGlyphs(glyphs, page), nil
}

// glyph is one positioned fragment of the content stream, usually a
// single character. Coordinates are PDF user space; y is the baseline.
type glyph struct {
	s        string
	x, y, w  float64
	fontSize float64
}

// groupGlyphs joins consecutive glyphs into word tokens. A word breaks
// on whitespace glyphs, on a horizontal gap wider than wordGapRatio of
// the font size, on a leftward jump (new text run), and on baseline
// changes beyond baselineRatio.
func groupGlyphs(glyphs []glyph, page int) []redact.Token {
	var tokens []redact.Token
	var word []glyph

	flush := func() {
		if len(word) > 0 {
			tokens = append(tokens, wordToken(word, page))
			word = nil
		}
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.s) == "" {
			flush()
			continue
		}
		if len(word) > 0 {
			last := word[len(word)-1]
			fs := math.Max(last.fontSize, g.fontSize)
			if fs <= 0 {
				fs = defaultFontSize
			}
			gap := g.x - (last.x + last.w)
			switch {
			case math.Abs(g.y-last.y) > baselineRatio*fs:
				flush()
			case gap > wordGapRatio*fs:
				flush()
			case gap < -backtrackRatio*fs:
				flush()
			}
		}
		word = append(word, g)
	}
	flush()
	return tokens
}

func wordToken(word []glyph, page int) redact.Token {
	var text strings.Builder
	fs := 0.0
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, g := range word {
		text.WriteString(g.s)
		fs = math.Max(fs, g.fontSize)
		minY = math.Min(minY, g.y)
		maxY = math.Max(maxY, g.y)
	}
	if fs <= 0 {
		fs = defaultFontSize
	}

	first, last := word[0], word[len(word)-1]
	x0 := first.x
	x1 := last.x + last.w
	if x1 <= x0 {
		// Some producers report zero advance widths; approximate from
		// the glyph count so the box still covers the word.
		x1 = x0 + 0.5*fs*float64(utf8.RuneCountInString(text.String()))
	}

	return redact.Token{
		Text: text.String(),
		Box:  geo.NewRect(x0, minY-descentRatio*fs, x1, maxY+ascentRatio*fs),
		Page: page,
	}
}

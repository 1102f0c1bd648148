// Package redact implements the pattern-to-region engine: it normalizes
// positioned tokens from either extraction source into a page text
// buffer, runs the configured patterns over it, and maps match spans
// back to the minimal set of rectangles that must be blacked out.
//
// Everything in this package is source-agnostic. Tokens carry page-space
// boxes regardless of whether they came from the embedded text layer or
// from OCR; given identical text and geometry the two paths produce
// identical regions.
package redact

import "github.com/wudi/pdfredact/geo"

// Source identifies where a page's tokens came from.
type Source string

const (
	SourceDigital Source = "digital"
	SourceOCR     Source = "ocr"
)

// Token is a single recognized word with its bounding box. Start and End
// are rune offsets into the owning PageText buffer, assigned by
// Normalize; extractors leave them zero.
type Token struct {
	Text  string
	Box   geo.Rect
	Page  int
	Start int
	End   int
}

// PageText is the concatenated text buffer for one page together with
// the reading-ordered tokens that produced it. It is transient: created
// per page, discarded once the page's regions are emitted.
type PageText struct {
	Page   int
	Buffer string
	Tokens []Token
}

// MatchSpan is a half-open rune range [Start, End) within a PageText
// buffer matched by the rule identified by Rule. Spans from different
// rules may overlap.
type MatchSpan struct {
	Start int
	End   int
	Rule  string
}

// Region is the final output unit consumed by the renderer: a rectangle
// to fill on one page. Regions emitted for a page never overlap or touch
// each other; MapRegions merges them first.
type Region struct {
	Page int
	Box  geo.Rect
}

// Options tunes the heuristics of the engine. The defaults suit typical
// office documents; rotated or multi-column layouts may need different
// tolerances.
type Options struct {
	// LineTolerance is the maximum vertical-center distance, in points,
	// for two tokens to share a reading line. Zero selects half the
	// median token height of the page.
	LineTolerance float64
	// MergeTolerance is the gap, in points, under which two redaction
	// boxes are merged into their bounding union to avoid seams.
	MergeTolerance float64
}

// DefaultOptions returns the tuning used by the CLI.
func DefaultOptions() Options {
	return Options{MergeTolerance: 1.0}
}

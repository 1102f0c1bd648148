package redact

import (
	"sort"

	"github.com/wudi/pdfredact/geo"
)

// MapRegions maps match spans onto the minimal set of redaction regions
// for a page. A span touching several tokens yields one box per touched
// token rather than one rectangle across the whole line, so unrelated
// glyphs between matched tokens survive. Within a token the full token
// box is used: font-metric precision is too unreliable (especially from
// OCR) to slice below token granularity, and over-covering one word
// beats leaking part of it.
//
// Boxes that overlap or sit within Options.MergeTolerance of each other
// are merged into their bounding union. A token already covered by an
// earlier span is not emitted twice.
//
// Spans intersecting no token (for example a match consisting only of
// the synthetic separator) are returned as unmapped. They represent a
// potential redaction gap and must be surfaced by the caller, but they
// never fail the page.
func MapRegions(pt PageText, spans []MatchSpan, opts Options) (regions []Region, unmapped []MatchSpan) {
	if len(spans) == 0 {
		return nil, nil
	}
	covered := make([]bool, len(pt.Tokens))
	var boxes []geo.Rect

	for _, s := range spans {
		hit := false
		// Tokens are ordered by offset; find the first one ending past
		// the span start and walk while they still intersect it.
		i := sort.Search(len(pt.Tokens), func(i int) bool {
			return pt.Tokens[i].End > s.Start
		})
		for ; i < len(pt.Tokens) && pt.Tokens[i].Start < s.End; i++ {
			hit = true
			if covered[i] {
				continue
			}
			covered[i] = true
			boxes = append(boxes, pt.Tokens[i].Box)
		}
		if !hit {
			unmapped = append(unmapped, s)
		}
	}

	for _, b := range mergeBoxes(boxes, opts.MergeTolerance) {
		regions = append(regions, Region{Page: pt.Page, Box: b})
	}
	return regions, unmapped
}

// mergeBoxes unions boxes that overlap or are within tol of each other,
// repeating until no pair qualifies. Unions can bring previously distant
// boxes into range, hence the fixpoint loop.
func mergeBoxes(boxes []geo.Rect, tol float64) []geo.Rect {
	if len(boxes) < 2 {
		return boxes
	}
	out := make([]geo.Rect, len(boxes))
	copy(out, boxes)
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); {
				if out[i].Near(out[j], tol) {
					out[i] = out[i].Union(out[j])
					out = append(out[:j], out[j+1:]...)
					merged = true
				} else {
					j++
				}
			}
		}
	}
	return out
}

// Package extract produces positioned word tokens for single PDF pages
// from one of two sources: the embedded digital text layer, or OCR over
// a rasterized page image. Both extractors satisfy the same one-method
// contract and emit boxes in page points with a bottom-left origin, so
// downstream stages never learn which path produced a page.
package extract

import (
	"context"

	"github.com/wudi/pdfredact/redact"
)

// Extractor yields the tokens of one zero-based page. Implementations
// are safe for concurrent use by page workers.
type Extractor interface {
	Source() redact.Source
	Extract(ctx context.Context, page int) ([]redact.Token, error)
}

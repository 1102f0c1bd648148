// Package render consumes the final redaction regions and produces the
// output artifacts: the sanitized PDF itself and, optionally, per-page
// preview images for reviewer inspection. It is the only package that
// writes to disk; everything upstream works on in-memory values.
package render

import "github.com/wudi/pdfredact/redact"

// Renderer persists a sanitized copy of the source document with the
// given regions drawn as opaque fills. Implementations must not leave a
// partially written file behind on error.
type Renderer interface {
	Render(regions []redact.Region, outPath string) error
}

// regionsByPage groups regions by page index, preserving order.
func regionsByPage(regions []redact.Region) map[int][]redact.Region {
	byPage := make(map[int][]redact.Region)
	for _, r := range regions {
		byPage[r.Page] = append(byPage[r.Page], r)
	}
	return byPage
}

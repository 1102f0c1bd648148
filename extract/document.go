package extract

import (
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// Document wraps a go-fitz document behind a mutex. MuPDF handles are
// not safe for concurrent use, so the page workers funnel their raster
// and probe calls through here; OCR and matching still run in parallel.
type Document struct {
	mu    sync.Mutex
	doc   *fitz.Document
	pages int
}

// OpenDocument opens the PDF at path for rasterization and text probing.
func OpenDocument(path string) (*Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open %s: %w", path, err)
	}
	return &Document{doc: doc, pages: doc.NumPage()}, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int { return d.pages }

// PageText returns the plain text of the page's embedded text layer, if
// any. The pipeline uses its length to decide between the digital and
// OCR paths.
func (d *Document) PageText(page int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	txt, err := d.doc.Text(page)
	if err != nil {
		return "", fmt.Errorf("extract: text layer of page %d: %w", page, err)
	}
	return txt, nil
}

// PageSize returns the page dimensions in points.
func (d *Document) PageSize(page int) (w, h float64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	bounds, err := d.doc.Bound(page)
	if err != nil {
		return 0, 0, fmt.Errorf("extract: bounds of page %d: %w", page, err)
	}
	return float64(bounds.Dx()), float64(bounds.Dy()), nil
}

// Raster renders the page at the given resolution.
func (d *Document) Raster(page int, dpi float64) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	img, err := d.doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("extract: rasterize page %d at %.0f dpi: %w", page, dpi, err)
	}
	return img, nil
}

// Close releases the underlying MuPDF handle.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Close()
}

package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/wudi/pdfredact/geo"
	"github.com/wudi/pdfredact/observability"
	"github.com/wudi/pdfredact/ocr"
	"github.com/wudi/pdfredact/redact"
)

// Rasterizer supplies page images and dimensions; *Document implements
// it. Kept as an interface so OCR extraction is testable without MuPDF.
type Rasterizer interface {
	PageSize(page int) (w, h float64, err error)
	Raster(page int, dpi float64) (image.Image, error)
}

// OCROptions tunes the OCR extraction path.
type OCROptions struct {
	// DPI is the raster resolution. Higher values improve recognition at
	// the cost of memory and OCR time.
	DPI int
	// Languages are passed to the OCR engine as trained-data hints.
	Languages []string
	// Preprocess enables grayscale plus contrast enhancement of the
	// raster before recognition.
	Preprocess bool
	// Logger receives per-page diagnostics; nil disables them.
	Logger observability.Logger
}

// DefaultOCROptions matches the defaults of the original tool: 300 dpi,
// English trained data, preprocessing on.
func DefaultOCROptions() OCROptions {
	return OCROptions{DPI: 300, Languages: []string{"eng"}, Preprocess: true}
}

// OCR extracts tokens by rasterizing a page and running it through an
// ocr.Engine. Recognized pixel boxes are scaled into page points and
// flipped to the bottom-left origin shared with the digital path. Boxes
// from this path carry materially higher positional error; downstream
// stages must not assume sub-pixel accuracy.
type OCR struct {
	ras    Rasterizer
	engine ocr.Engine
	opts   OCROptions
	log    observability.Logger
}

// NewOCR builds the OCR extractor.
func NewOCR(ras Rasterizer, engine ocr.Engine, opts OCROptions) *OCR {
	if opts.DPI <= 0 {
		opts.DPI = DefaultOCROptions().DPI
	}
	log := opts.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	return &OCR{ras: ras, engine: engine, opts: opts, log: log}
}

func (o *OCR) Source() redact.Source { return redact.SourceOCR }

// Extract rasterizes and recognizes the zero-based page.
func (o *OCR) Extract(ctx context.Context, page int) ([]redact.Token, error) {
	pageW, pageH, err := o.ras.PageSize(page)
	if err != nil {
		return nil, err
	}
	img, err := o.ras.Raster(page, float64(o.opts.DPI))
	if err != nil {
		return nil, err
	}
	if o.opts.Preprocess {
		img = preprocessRaster(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("extract: encode raster of page %d: %w", page, err)
	}
	in := ocr.NewImageInput(
		fmt.Sprintf("page-%d", page),
		page,
		buf.Bytes(),
		ocr.ImageFormatPNG,
		ocr.WithLanguages(o.opts.Languages...),
		ocr.WithDPI(o.opts.DPI),
	)

	res, err := o.engine.Recognize(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("extract: ocr page %d: %w", page, err)
	}
	o.log.Debug("ocr page recognized",
		observability.Int("page", page),
		observability.Int("words", len(res.Words)))

	bounds := img.Bounds()
	scaleX := pageW / float64(bounds.Dx())
	scaleY := pageH / float64(bounds.Dy())

	tokens := make([]redact.Token, 0, len(res.Words))
	for _, w := range res.Words {
		if w.Bounds.IsEmpty() || w.Text == "" {
			continue
		}
		// Pixel space has a top-left origin; flip into page space.
		box := geo.NewRect(
			w.Bounds.X*scaleX,
			pageH-(w.Bounds.Y+w.Bounds.Height)*scaleY,
			(w.Bounds.X+w.Bounds.Width)*scaleX,
			pageH-w.Bounds.Y*scaleY,
		)
		tokens = append(tokens, redact.Token{Text: w.Text, Box: box, Page: page})
	}
	return tokens, nil
}

// preprocessRaster converts the page image to grayscale and lifts the
// contrast. Scanned statements are frequently low-contrast; Tesseract
// misreads fewer digits on the adjusted image.
func preprocessRaster(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	return imaging.AdjustContrast(gray, 15)
}

package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/pdfredact/observability"
	"github.com/wudi/pdfredact/redact"
)

// PDFWriter renders regions into a copy of the source document using
// pdfcpu: each affected page gets an appended content stream that fills
// the region rectangles with opaque black. All original page content is
// preserved; the fills are drawn on top.
type PDFWriter struct {
	inputPath string
	conf      *model.Configuration
	log       observability.Logger
}

var _ Renderer = (*PDFWriter)(nil)

// NewPDFWriter builds a writer for the document at inputPath.
func NewPDFWriter(inputPath string, log observability.Logger) *PDFWriter {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &PDFWriter{
		inputPath: inputPath,
		conf:      model.NewDefaultConfiguration(),
		log:       log,
	}
}

// Render writes the sanitized document to outPath. With no regions the
// input is copied through unchanged, so a run that found nothing still
// produces its output file. The document is written to a temporary
// sibling first and moved into place, so a failed write never leaves a
// truncated output behind.
func (w *PDFWriter) Render(regions []redact.Region, outPath string) error {
	start := time.Now()
	if len(regions) == 0 {
		if err := w.copyThrough(outPath); err != nil {
			return err
		}
		w.log.Debug("document written",
			observability.Duration(observability.MetricWriteTime, time.Since(start)))
		return nil
	}

	ctx, err := api.ReadContextFile(w.inputPath)
	if err != nil {
		return fmt.Errorf("render: read %s: %w", w.inputPath, err)
	}

	for page, rs := range regionsByPage(regions) {
		if err := appendOverlay(ctx, page+1, rs); err != nil {
			return fmt.Errorf("render: page %d: %w", page, err)
		}
		w.log.Debug("overlay appended",
			observability.Int("page", page),
			observability.Int("regions", len(rs)))
	}

	tmp := outPath + ".tmp"
	if err := api.WriteContextFile(ctx, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("render: write %s: %w", outPath, err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("render: finalize %s: %w", outPath, err)
	}
	w.log.Debug("document written",
		observability.Duration(observability.MetricWriteTime, time.Since(start)))
	return nil
}

// appendOverlay adds a content stream drawing the region fills after
// the existing page content. pageNr is 1-based, as pdfcpu counts pages.
func appendOverlay(ctx *model.Context, pageNr int, regions []redact.Region) error {
	d, _, inh, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("page dict missing")
	}

	// Region boxes are relative to the page origin; shift by the media
	// box lower-left corner for pages with offset boxes.
	var llx, lly float64
	if inh != nil && inh.MediaBox != nil {
		llx, lly = inh.MediaBox.LL.X, inh.MediaBox.LL.Y
	}

	sd, err := ctx.NewStreamDictForBuf(overlayContent(llx, lly, regions))
	if err != nil {
		return err
	}
	if err := sd.Encode(); err != nil {
		return err
	}
	ir, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return err
	}

	obj, found := d.Find("Contents")
	if !found {
		d.Insert("Contents", *ir)
		return nil
	}
	switch o := obj.(type) {
	case types.Array:
		d.Update("Contents", append(o, *ir))
	case types.IndirectRef:
		resolved, err := ctx.Dereference(o)
		if err != nil {
			return err
		}
		if arr, ok := resolved.(types.Array); ok {
			d.Update("Contents", append(arr, *ir))
		} else {
			d.Update("Contents", types.Array{o, *ir})
		}
	default:
		d.Update("Contents", types.Array{*ir})
	}
	return nil
}

// overlayContent builds the appended content stream: a saved graphics
// state, black fill color, one rectangle subpath per region, one fill.
func overlayContent(llx, lly float64, regions []redact.Region) []byte {
	var buf bytes.Buffer
	buf.WriteString("q 0 g\n")
	for _, r := range regions {
		fmt.Fprintf(&buf, "%.2f %.2f %.2f %.2f re\n",
			llx+r.Box.X0, lly+r.Box.Y0, r.Box.Width(), r.Box.Height())
	}
	buf.WriteString("f\nQ\n")
	return buf.Bytes()
}

func (w *PDFWriter) copyThrough(outPath string) error {
	src, err := os.Open(w.inputPath)
	if err != nil {
		return fmt.Errorf("render: open %s: %w", w.inputPath, err)
	}
	defer src.Close()

	tmp := outPath + ".tmp"
	dst, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", tmp, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return fmt.Errorf("render: copy to %s: %w", tmp, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("render: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("render: finalize %s: %w", outPath, err)
	}
	return nil
}

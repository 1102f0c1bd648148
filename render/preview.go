package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/wudi/pdfredact/extract"
	"github.com/wudi/pdfredact/observability"
	"github.com/wudi/pdfredact/redact"
)

// Preview writes one PNG per page with the redaction regions filled in,
// so a reviewer can inspect what will be covered without opening the
// output PDF. Pages are rendered at screen resolution and scaled down
// to a fixed width.
type Preview struct {
	ras      extract.Rasterizer
	dir      string
	dpi      float64
	maxWidth int
	log      observability.Logger
}

// NewPreview builds a preview renderer writing into dir.
func NewPreview(ras extract.Rasterizer, dir string, log observability.Logger) *Preview {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Preview{ras: ras, dir: dir, dpi: 96, maxWidth: 1200, log: log}
}

// WritePages renders every page that carries at least one region, plus
// page 0 as an anchor when nothing matched at all.
func (p *Preview) WritePages(numPages int, regions []redact.Region) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("render: preview dir %s: %w", p.dir, err)
	}
	byPage := regionsByPage(regions)
	for page := 0; page < numPages; page++ {
		rs := byPage[page]
		if len(rs) == 0 && page > 0 {
			continue
		}
		if err := p.writePage(page, rs); err != nil {
			return err
		}
	}
	return nil
}

func (p *Preview) writePage(page int, regions []redact.Region) error {
	_, pageH, err := p.ras.PageSize(page)
	if err != nil {
		return err
	}
	img, err := p.ras.Raster(page, p.dpi)
	if err != nil {
		return err
	}

	canvas := image.NewRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)

	scale := p.dpi / 72.0
	black := image.NewUniform(color.Black)
	for _, r := range regions {
		// Page space is bottom-left, pixels are top-left.
		px := image.Rect(
			int(r.Box.X0*scale),
			int((pageH-r.Box.Y1)*scale),
			int(r.Box.X1*scale+0.5),
			int((pageH-r.Box.Y0)*scale+0.5),
		)
		draw.Draw(canvas, px.Intersect(canvas.Bounds()), black, image.Point{}, draw.Src)
	}

	out := p.shrink(canvas)
	path := filepath.Join(p.dir, fmt.Sprintf("page-%03d.png", page+1))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("render: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("render: close %s: %w", path, err)
	}
	p.log.Debug("preview written",
		observability.Int("page", page),
		observability.Int("regions", len(regions)))
	return nil
}

func (p *Preview) shrink(img *image.RGBA) image.Image {
	w := img.Bounds().Dx()
	if w <= p.maxWidth {
		return img
	}
	h := img.Bounds().Dy() * p.maxWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, p.maxWidth, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

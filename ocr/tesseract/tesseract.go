// Package tesseract implements ocr.Engine on top of the gosseract
// bindings to the Tesseract library.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/pdfredact/ocr"
)

// DefaultMinConfidence drops words Tesseract itself is unsure about.
// Low-confidence fragments are usually speckle misread as text and would
// generate spurious tokens for the matcher.
const DefaultMinConfidence = 0.5

// client is the slice of the gosseract API one recognition needs.
type client interface {
	SetImageFromBytes(data []byte) error
	SetLanguage(langs ...string) error
	SetVariable(key gosseract.SettableVariable, value string) error
	Text() (string, error)
	GetBoundingBoxes(level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, error)
	Close() error
}

// Engine is a Tesseract-backed OCR provider. A fresh gosseract client is
// created per Recognize call so the engine is safe for concurrent use by
// the page workers.
type Engine struct {
	clientFactory func() client
	minConfidence float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinConfidence overrides the word confidence cutoff (0..1).
func WithMinConfidence(min float64) Option {
	return func(e *Engine) { e.minConfidence = min }
}

// New constructs a Tesseract-backed OCR engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		clientFactory: func() client { return gosseract.NewClient() },
		minConfidence: DefaultMinConfidence,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image input.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	words, err := e.extractWords(c)
	if err != nil {
		return ocr.Result{}, err
	}

	return ocr.Result{
		InputID:   in.ID,
		PlainText: strings.TrimSpace(text),
		Words:     words,
	}, nil
}

func (e *Engine) extractWords(c client) ([]ocr.Word, error) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("word boxes: %w", err)
	}
	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		conf := b.Confidence / 100.0
		if conf < e.minConfidence {
			continue
		}
		txt := strings.TrimSpace(b.Word)
		if txt == "" {
			continue
		}
		words = append(words, ocr.Word{
			Text: txt,
			Bounds: ocr.Region{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
			Confidence: conf,
		})
	}
	return words, nil
}

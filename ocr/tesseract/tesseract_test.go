package tesseract

import (
	"context"
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/pdfredact/ocr"
)

type fakeClient struct {
	image   []byte
	langs   []string
	vars    map[string]string
	text    string
	textErr error
	boxes   []gosseract.BoundingBox
	closed  bool
}

func (f *fakeClient) SetImageFromBytes(data []byte) error {
	f.image = data
	return nil
}

func (f *fakeClient) SetLanguage(langs ...string) error {
	f.langs = langs
	return nil
}

func (f *fakeClient) SetVariable(key gosseract.SettableVariable, value string) error {
	if f.vars == nil {
		f.vars = map[string]string{}
	}
	f.vars[string(key)] = value
	return nil
}

func (f *fakeClient) Text() (string, error) { return f.text, f.textErr }

func (f *fakeClient) GetBoundingBoxes(level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, error) {
	if level != gosseract.RIL_WORD {
		return nil, errors.New("unexpected iterator level")
	}
	return f.boxes, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func newFakeEngine(fc *fakeClient, opts ...Option) *Engine {
	e := New(opts...)
	e.clientFactory = func() client { return fc }
	return e
}

func TestRecognizePlumbing(t *testing.T) {
	fc := &fakeClient{text: "  Account 123456789\n"}
	e := newFakeEngine(fc)

	in := ocr.Input{
		ID:        "page-3",
		Image:     []byte{0x89, 0x50, 0x4e, 0x47},
		Languages: []string{"eng", "deu"},
		DPI:       150,
		Metadata:  map[string]string{"tessedit_char_whitelist": "0123456789"},
	}
	res, err := e.Recognize(context.Background(), in)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}

	if !reflect.DeepEqual(fc.image, in.Image) {
		t.Fatalf("image bytes not forwarded")
	}
	if !reflect.DeepEqual(fc.langs, in.Languages) {
		t.Fatalf("languages = %v", fc.langs)
	}
	if fc.vars["user_defined_dpi"] != "150" {
		t.Fatalf("dpi variable = %q", fc.vars["user_defined_dpi"])
	}
	if fc.vars["tessedit_char_whitelist"] != "0123456789" {
		t.Fatalf("metadata variable missing: %v", fc.vars)
	}
	if res.InputID != "page-3" || res.PlainText != "Account 123456789" {
		t.Fatalf("result = %+v", res)
	}
	if !fc.closed {
		t.Fatalf("client not closed")
	}
}

func TestRecognizeFiltersWords(t *testing.T) {
	fc := &fakeClient{
		boxes: []gosseract.BoundingBox{
			{Box: image.Rect(10, 20, 110, 50), Word: "123456789", Confidence: 90},
			{Box: image.Rect(200, 20, 240, 50), Word: "smudge", Confidence: 40},
			{Box: image.Rect(300, 20, 310, 50), Word: "   ", Confidence: 95},
		},
	}
	e := newFakeEngine(fc)

	res, err := e.Recognize(context.Background(), ocr.Input{Image: []byte{1}})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(res.Words) != 1 {
		t.Fatalf("words = %+v, want the confident non-blank word only", res.Words)
	}
	w := res.Words[0]
	want := ocr.Region{X: 10, Y: 20, Width: 100, Height: 30}
	if w.Text != "123456789" || w.Bounds != want || w.Confidence != 0.9 {
		t.Fatalf("word = %+v", w)
	}
}

func TestWithMinConfidence(t *testing.T) {
	fc := &fakeClient{
		boxes: []gosseract.BoundingBox{
			{Box: image.Rect(0, 0, 10, 10), Word: "faint", Confidence: 40},
		},
	}
	e := newFakeEngine(fc, WithMinConfidence(0.2))

	res, err := e.Recognize(context.Background(), ocr.Input{Image: []byte{1}})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(res.Words) != 1 {
		t.Fatalf("lowered cutoff should keep the word: %+v", res.Words)
	}
}

func TestRecognizeCancelledContext(t *testing.T) {
	called := false
	e := New()
	e.clientFactory = func() client {
		called = true
		return &fakeClient{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Recognize(ctx, ocr.Input{Image: []byte{1}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if called {
		t.Fatalf("client created after cancellation")
	}
}

func TestRecognizeTextError(t *testing.T) {
	fc := &fakeClient{textErr: errors.New("tesseract crashed")}
	e := newFakeEngine(fc)

	if _, err := e.Recognize(context.Background(), ocr.Input{Image: []byte{1}}); err == nil {
		t.Fatalf("expected recognition error")
	}
	if !fc.closed {
		t.Fatalf("client leaked on error")
	}
}

package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags([]string{"statement.pdf"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.inputPath != "statement.pdf" {
		t.Fatalf("inputPath = %q", opts.inputPath)
	}
	if opts.outputPath != "statement_redacted.pdf" {
		t.Fatalf("outputPath = %q", opts.outputPath)
	}
	if opts.dpi != 300 || opts.noOCR {
		t.Fatalf("ocr defaults wrong: %+v", opts)
	}
	if !reflect.DeepEqual(opts.languages, []string{"eng"}) {
		t.Fatalf("languages = %v", opts.languages)
	}
}

func TestParseFlagsDPIOverrides(t *testing.T) {
	t.Setenv("REDACT_DPI", "150")
	opts, err := parseFlags([]string{"in.pdf"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.dpi != 150 {
		t.Fatalf("env dpi = %d, want 150", opts.dpi)
	}

	opts, err = parseFlags([]string{"-dpi", "450", "in.pdf"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.dpi != 450 {
		t.Fatalf("flag dpi = %d, want 450", opts.dpi)
	}

	t.Setenv("REDACT_DPI", "not-a-number")
	opts, err = parseFlags([]string{"in.pdf"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.dpi != 300 {
		t.Fatalf("bad env dpi = %d, want default 300", opts.dpi)
	}
}

func TestParseFlagsMissingInput(t *testing.T) {
	if _, err := parseFlags(nil); err == nil {
		t.Fatalf("expected an error without an input path")
	}
}

func TestSplitLanguages(t *testing.T) {
	got := splitLanguages(" eng, deu ,,fra ")
	if !reflect.DeepEqual(got, []string{"eng", "deu", "fra"}) {
		t.Fatalf("splitLanguages() = %v", got)
	}
}

func TestDefaultOutput(t *testing.T) {
	cases := map[string]string{
		"in.pdf":          "in_redacted.pdf",
		"dir/scan.PDF":    "dir/scan_redacted.PDF",
		"no_extension":    "no_extension_redacted",
		"a.b/weird.x.pdf": "a.b/weird.x_redacted.pdf",
	}
	for in, want := range cases {
		if got := defaultOutput(in); got != want {
			t.Fatalf("defaultOutput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteDummyStatement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dummy.pdf")
	if err := writeDummyStatement(path); err != nil {
		t.Fatalf("writeDummyStatement() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF-1.4") {
		t.Fatalf("missing pdf header")
	}
	if !strings.Contains(string(data), `Account Number:   123456789`) {
		t.Fatalf("statement text missing from content stream")
	}

	// The fixture must be a structurally valid document, not just
	// byte soup with a header.
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		t.Fatalf("fixture does not parse: %v", err)
	}
	if ctx.PageCount != 2 {
		t.Fatalf("PageCount = %d, want 2", ctx.PageCount)
	}
}

func TestEscapeString(t *testing.T) {
	if got := escapeString(`a(b)c\d`); got != `a\(b\)c\\d` {
		t.Fatalf("escapeString() = %q", got)
	}
}

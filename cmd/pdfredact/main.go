// Command pdfredact blacks out sensitive patterns in PDF documents.
// Pages with an embedded text layer are read directly; scanned pages go
// through OCR. Matched text is covered with opaque rectangles in a copy
// of the input, the original is never modified.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ledongthuc/pdf"

	"github.com/wudi/pdfredact/config"
	"github.com/wudi/pdfredact/extract"
	"github.com/wudi/pdfredact/observability"
	"github.com/wudi/pdfredact/ocr/tesseract"
	"github.com/wudi/pdfredact/pipeline"
	"github.com/wudi/pdfredact/render"
)

type options struct {
	inputPath   string
	outputPath  string
	patterns    string
	dpi         int
	languages   []string
	workers     int
	noOCR       bool
	previewDir  string
	reportPath  string
	createDummy string
	verbose     bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfredact: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pdfredact: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	// Local overrides for TESSDATA_PREFIX and the REDACT_* defaults may
	// live in a .env next to the binary; absence is not an error.
	_ = godotenv.Load()

	var opts options
	fs := flag.NewFlagSet("pdfredact", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pdfredact [flags] <input.pdf>\n")
		fs.PrintDefaults()
	}
	output := fs.String("o", "", "Output path (default <input>_redacted.pdf)")
	patterns := fs.String("p", envDefault("REDACT_PATTERNS", "patterns.yaml"), "Pattern file (YAML)")
	dpi := fs.Int("dpi", envInt("REDACT_DPI", 300), "OCR render resolution")
	lang := fs.String("lang", envDefault("REDACT_LANG", "eng"), "OCR languages, comma separated")
	workers := fs.Int("workers", 0, "Concurrent page workers (0 = auto)")
	noOCR := fs.Bool("no-ocr", false, "Disable OCR; scanned pages fail instead")
	preview := fs.String("preview", "", "Directory for per-page preview PNGs")
	report := fs.String("report", "", "Path for a JSON run report")
	dummy := fs.String("create-dummy", "", "Write a sample bank statement PDF to this path and exit")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.patterns = *patterns
	opts.dpi = *dpi
	opts.languages = splitLanguages(*lang)
	opts.workers = *workers
	opts.noOCR = *noOCR
	opts.previewDir = *preview
	opts.reportPath = *report
	opts.createDummy = *dummy
	opts.verbose = *verbose

	if opts.createDummy != "" {
		return opts, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("missing input pdf")
	}
	opts.inputPath = fs.Arg(0)
	opts.outputPath = *output
	if opts.outputPath == "" {
		opts.outputPath = defaultOutput(opts.inputPath)
	}
	return opts, nil
}

// defaultOutput derives <input>_redacted.pdf from the input path.
func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_redacted" + ext
}

func splitLanguages(s string) []string {
	var langs []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func run(opts options) error {
	level := observability.LevelInfo
	if opts.verbose {
		level = observability.LevelDebug
	}
	log := observability.NewTextLogger(os.Stderr, level)

	if opts.createDummy != "" {
		if err := writeDummyStatement(opts.createDummy); err != nil {
			return err
		}
		log.Info("dummy statement written", observability.String("path", opts.createDummy))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := config.Load(opts.patterns, log)
	if err != nil {
		return err
	}

	doc, err := extract.OpenDocument(opts.inputPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	var digital extract.Extractor
	f, reader, err := pdf.Open(opts.inputPath)
	if err != nil {
		// The text layer is unreadable; every page goes through OCR.
		log.Warn("text layer unavailable, relying on ocr",
			observability.Error("err", err))
	} else {
		defer f.Close()
		digital = extract.NewDigital(reader)
	}

	var ocrEx extract.Extractor
	if !opts.noOCR {
		ocrOpts := extract.DefaultOCROptions()
		ocrOpts.DPI = opts.dpi
		ocrOpts.Languages = opts.languages
		ocrOpts.Logger = log
		ocrEx = extract.NewOCR(doc, tesseract.New(), ocrOpts)
	}
	if digital == nil && ocrEx == nil {
		return fmt.Errorf("no extraction path: text layer unreadable and ocr disabled")
	}

	popts := pipeline.DefaultOptions()
	popts.Logger = log
	if opts.workers > 0 {
		popts.Workers = opts.workers
	}
	if opts.noOCR {
		popts.OCRFallback = false
	}

	p := pipeline.New(doc, digital, ocrEx, rules, popts)
	res := p.Run(ctx)

	writer := render.NewPDFWriter(opts.inputPath, log)
	if err := writer.Render(res.Regions, opts.outputPath); err != nil {
		return err
	}
	log.Info("output written",
		observability.String("path", opts.outputPath),
		observability.Int("regions", len(res.Regions)))

	if opts.previewDir != "" {
		pv := render.NewPreview(doc, opts.previewDir, log)
		if err := pv.WritePages(doc.NumPages(), res.Regions); err != nil {
			return err
		}
	}
	if opts.reportPath != "" {
		rep := pipeline.NewReport(opts.inputPath, opts.outputPath, rules.Len(), res)
		if err := pipeline.WriteReport(opts.reportPath, rep); err != nil {
			return err
		}
	}

	if res.FailedPages > 0 {
		return fmt.Errorf("%d of %d pages failed; output covers the remaining pages only",
			res.FailedPages, len(res.Pages))
	}
	return nil
}

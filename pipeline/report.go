package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/wudi/pdfredact/redact"
)

// PageReport is the serializable per-page outcome.
type PageReport struct {
	Page     int    `json:"page"`
	Source   string `json:"source,omitempty"`
	Tokens   int    `json:"tokens"`
	Matches  int    `json:"matches"`
	Regions  int    `json:"regions"`
	Unmapped int    `json:"unmapped"`
	Error    string `json:"error,omitempty"`
}

// Report is the machine-readable run summary written next to the
// sanitized output on request.
type Report struct {
	Input        string       `json:"input"`
	Output       string       `json:"output"`
	GeneratedAt  time.Time    `json:"generated_at"`
	Patterns     int          `json:"patterns"`
	Pages        []PageReport `json:"pages"`
	TotalRegions int          `json:"total_regions"`
	FailedPages  int          `json:"failed_pages"`
	Elapsed      string       `json:"elapsed"`
}

// NewReport flattens a run result into its serializable form.
func NewReport(input, output string, patterns int, res *Result) Report {
	rep := Report{
		Input:        input,
		Output:       output,
		GeneratedAt:  time.Now().UTC(),
		Patterns:     patterns,
		TotalRegions: len(res.Regions),
		FailedPages:  res.FailedPages,
		Elapsed:      res.Duration.Round(time.Millisecond).String(),
	}
	for _, pr := range res.Pages {
		pp := PageReport{
			Page:     pr.Page,
			Tokens:   pr.Tokens,
			Matches:  pr.Matches,
			Regions:  len(pr.Regions),
			Unmapped: len(pr.Unmapped),
		}
		if pr.Source != redact.Source("") {
			pp.Source = string(pr.Source)
		}
		if pr.Err != nil {
			pp.Error = pr.Err.Error()
		}
		rep.Pages = append(rep.Pages, pp)
	}
	return rep
}

// WriteReport serializes the report as indented JSON.
func WriteReport(path string, rep Report) error {
	data, err := sonic.ConfigDefault.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pipeline: write report %s: %w", path, err)
	}
	return nil
}

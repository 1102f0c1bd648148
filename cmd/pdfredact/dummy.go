package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// statementLines is sample content carrying the kinds of numbers the
// default patterns target, for demos and end-to-end checks.
var statementLines = []string{
	"FIRST EXAMPLE BANK",
	"Monthly Account Statement",
	"",
	"Account Holder:   Jane Q. Sample",
	"Account Number:   123456789",
	"Routing Number:   021000021",
	"Statement Period: 2026-08-01 through 2026-08-31",
	"",
	"Date        Description                     Amount      Balance",
	"2026-08-03  Direct Deposit - Employer       +2,450.00   5,731.22",
	"2026-08-07  Card Purchase - Grocery         -87.45      5,643.77",
	"2026-08-12  Transfer to 9876543210          -500.00     5,143.77",
	"2026-08-21  ATM Withdrawal                  -200.00     4,943.77",
	"",
	"Questions? Reference account 123456789 when calling.",
}

// writeDummyStatement emits a two-page PDF built by hand: a Helvetica
// statement page, and a second page with no text layer at all, which
// exercises the scanned-page handling. Keeping the fixture generator
// free of a PDF library makes its output a fair input for the rest of
// the tool.
func writeDummyStatement(path string) error {
	var content bytes.Buffer
	content.WriteString("BT\n/F1 11 Tf\n")
	y := 750.0
	for _, line := range statementLines {
		if line != "" {
			fmt.Fprintf(&content, "1 0 0 1 72 %.0f Tm (%s) Tj\n", y, escapeString(line))
		}
		y -= 18
	}
	content.WriteString("ET\n")

	// A light gray fill is the whole content of the second page; with
	// no text operators it reads as a scanned page.
	blank := "0.9 g\n36 36 540 720 re\nf\n"

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 6 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << >> /Contents 7 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(blank), blank),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xref)

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// escapeString quotes the characters with meaning inside PDF literal
// strings.
func escapeString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

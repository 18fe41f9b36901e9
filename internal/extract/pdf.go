package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFFormat implements Format for PDF files.
type PDFFormat struct{}

func init() {
	Register(&PDFFormat{})
}

func (f *PDFFormat) Name() string         { return "PDF" }
func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }

func (f *PDFFormat) Extract(filename string) (string, error) {
	file, r, err := pdf.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	var out strings.Builder
	fonts := make(map[string]*pdf.Font)

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			// Pages that fail to decode are skipped, matching the
			// lenient per-chapter handling in the EPUB extractor.
			continue
		}
		out.WriteString(text)
		out.WriteString("\n\n")
	}

	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("no extractable text in %s", filename)
	}
	return out.String(), nil
}

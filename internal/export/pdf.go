package export

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"
)

// AnswerPDF renders a generated answer as a simple single-column PDF, one
// multi-line cell per newline-delimited line of the answer.
func AnswerPDF(answer string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, line := range strings.Split(answer, "\n") {
		pdf.MultiCell(0, 10, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

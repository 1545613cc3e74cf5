package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/fpang/edu-studio/internal/lesson"
)

// Document layout, A4 portrait in millimetres.
const (
	fontFamily = "Arial"
	lineHeight = 10
)

// Render lays out doc as a one-column PDF: the title as a centered heading,
// the lesson body, then the quiz.
func Render(doc lesson.Document) ([]byte, error) {
	return render(doc, true)
}

func render(doc lesson.Document, compress bool) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("edu-studio", true)

	// Core fonts are cp1252; translate so accented French renders.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, lineHeight, tr("COURS : "+doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(lineHeight)

	pdf.SetFont(fontFamily, "", 12)
	pdf.MultiCell(0, lineHeight, tr("CONTENU DU COURS :\n"+doc.Body), "", "L", false)
	pdf.Ln(lineHeight)

	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(0, lineHeight, tr("QUIZ D'ÉVALUATION"), "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 11)
	pdf.MultiCell(0, lineHeight, tr(doc.Quiz), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Package quizpdf renders a stored quiz as a printable worksheet.
package quizpdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"

	"studybuddy/internal/llmjson"
	"studybuddy/internal/model"
)

const (
	ContentType = "application/pdf"

	// DefaultFontPath is where deployments ship the Unicode font.
	DefaultFontPath = "ttf/DejaVuSans.ttf"

	utf8FontName = "DejaVuSans"
	coreFontName = "Helvetica"
)

// Options control the worksheet layout. FontPath points at a TTF font with
// wide Unicode coverage; without it the core Helvetica font is used and text
// is mapped to cp1252.
type Options struct {
	WithAnswers bool
	FontPath    string
}

func Render(quiz *model.Quiz, opts Options) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quiz: "+quiz.Subject, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	font := coreFontName
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontPath != "" {
		if _, err := os.Stat(opts.FontPath); err == nil {
			pdf.AddUTF8Font(utf8FontName, "", opts.FontPath)
			pdf.AddUTF8Font(utf8FontName, "B", opts.FontPath)
			font = utf8FontName
			tr = func(s string) string { return s }
		}
	}

	pdf.SetFont(font, "B", 18)
	pdf.MultiCell(0, 9, tr("Quiz: "+quiz.Subject), "", "", false)
	pdf.SetFont(font, "", 9)
	pdf.Cell(0, 6, tr(fmt.Sprintf("%d questions - %s", len(quiz.Items), quiz.CreatedAt.Format("2006-01-02"))))
	pdf.Ln(10)

	for i, item := range quiz.Items {
		pdf.SetFont(font, "B", 12)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, item.Question)), "", "", false)

		pdf.SetFont(font, "", 11)
		switch item.Type {
		case llmjson.TypeMCQ:
			for j, choice := range item.Choices {
				pdf.SetX(18)
				pdf.MultiCell(0, 6, tr(fmt.Sprintf("%c) %s", 'a'+rune(j%26), choice)), "", "", false)
			}
		default:
			pdf.Ln(2)
			for i := 0; i < 3; i++ {
				y := pdf.GetY() + 6
				pdf.Line(18, y, 195, y)
				pdf.SetY(y)
			}
		}
		if opts.WithAnswers {
			pdf.SetFont(font, "", 10)
			pdf.SetTextColor(0, 110, 0)
			pdf.MultiCell(0, 6, tr("Answer: "+item.Answer), "", "", false)
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render quiz pdf failed: %w", err)
	}
	return buf.Bytes(), nil
}

package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/tchasinga/adminjobposter/internal/models"
)

const (
	pdfMargin     = 50.0
	pdfLineHeight = 15.0
	pdfBlockGap   = 10.0
)

// WritePDF renders one text block per applicant on A4 pages.
func WritePDF(w io.Writer, applicants []*models.Applicant) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle("Applicants Export", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(pdfMargin, pdfMargin, "Applicants Export")

	y := pdfMargin + 30
	for i, a := range applicants {
		lines := []string{
			fmt.Sprintf("%d. %s (%s)", i+1, a.Fullname, a.Email),
			"   Country: " + a.Country,
			"   Status: " + a.Status,
			"   Experience: " + a.ExperienceLevel,
			"   Salary expectation: " + strconv.FormatFloat(a.SalaryExpectation, 'f', -1, 64),
		}

		if y+float64(len(lines))*pdfLineHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			y = pdfMargin
		}
		for j, line := range lines {
			if j == 0 {
				pdf.SetFont("Helvetica", "B", 12)
			} else {
				pdf.SetFont("Helvetica", "", 11)
			}
			pdf.Text(pdfMargin, y, tr(line))
			y += pdfLineHeight
		}
		y += pdfBlockGap
	}

	return pdf.Output(w)
}

// Package export renders applicants as CSV, PDF or XLSX downloads.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tchasinga/adminjobposter/internal/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	case "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename is the attachment name offered to the browser.
func (f Format) Filename() string {
	return "applicants." + string(f)
}

// Write renders applicants to w in format f.
func Write(w io.Writer, f Format, applicants []*models.Applicant) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, applicants)
	case FormatPDF:
		return WritePDF(w, applicants)
	case FormatXLSX:
		return WriteXLSX(w, applicants)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

var columns = []string{
	"fullname",
	"country",
	"email",
	"telegramUsername",
	"appliedJobs",
	"salaryExpectation",
	"experienceLevel",
	"uploadResume",
	"casinoExperience",
	"strokeIgaming",
	"previousCompany",
	"previousAchievements",
	"availability",
	"status",
	"createdAt",
	"updatedAt",
}

func row(a *models.Applicant) []string {
	return []string{
		a.Fullname,
		a.Country,
		a.Email,
		a.TelegramUsername,
		strings.Join(a.AppliedJobs, "; "),
		strconv.FormatFloat(a.SalaryExpectation, 'f', -1, 64),
		a.ExperienceLevel,
		a.UploadResume,
		strconv.FormatBool(a.CasinoExperience),
		strconv.FormatBool(a.StrokeIgaming),
		a.PreviousCompany,
		strings.Join(a.PreviousAchievements, "; "),
		a.Availability,
		a.Status,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

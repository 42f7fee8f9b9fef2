package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tchasinga/adminjobposter/internal/models"
)

func sampleApplicants(n int) []*models.Applicant {
	out := make([]*models.Applicant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &models.Applicant{
			Fullname:             "José Álvarez",
			Country:              "Spain",
			Email:                "jose@example.com",
			AppliedJobs:          []string{"Backend Engineer", "SRE"},
			SalaryExpectation:    4200.5,
			ExperienceLevel:      "senior",
			CasinoExperience:     true,
			PreviousAchievements: []string{},
			Availability:         "immediate",
			Status:               models.StatusReviewed,
			CreatedAt:            time.Date(2024, time.January, 5, 9, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("excel")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "applicants.csv", FormatCSV.Filename())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleApplicants(2)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, columns, records[0])

	first := records[1]
	assert.Equal(t, "José Álvarez", first[0])
	assert.Equal(t, "Backend Engineer; SRE", first[4])
	assert.Equal(t, "4200.5", first[5])
	assert.Equal(t, "", first[7])
	assert.Equal(t, "true", first[8])
	assert.Equal(t, "2024-01-05T09:00:00Z", first[14])
	assert.Equal(t, "", first[15])
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	// enough applicants to force a second page
	require.NoError(t, Write(&buf, FormatPDF, sampleApplicants(40)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")), 1)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleApplicants(3)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "fullname", rows[0][0])
	assert.Equal(t, "jose@example.com", rows[1][2])
	assert.Equal(t, "4200.5", rows[1][5])
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, Format("doc"), nil), ErrUnsupportedFormat)
}

package export

import (
	"encoding/csv"
	"io"

	"github.com/tchasinga/adminjobposter/internal/models"
)

func WriteCSV(w io.Writer, applicants []*models.Applicant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, a := range applicants {
		if err := cw.Write(row(a)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

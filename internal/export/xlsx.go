package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tchasinga/adminjobposter/internal/models"
)

const sheetName = "Applicants"

func WriteXLSX(w io.Writer, applicants []*models.Applicant) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err = f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err = f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, a := range applicants {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(a)
		// keep the salary numeric so spreadsheets can sum it
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		cells[5] = a.SalaryExpectation
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return err
		}
	}

	return f.Write(w)
}

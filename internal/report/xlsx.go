package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Exam Report"

// WriteXLSX renders the report as an xlsx workbook at path.
func (r Report) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create report sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	row := 1
	setRow := func(values ...any) {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	setRow(r.Title)
	setRow("Room:", r.Room)
	setRow("Date:", r.Date)
	setRow("Start:", r.Start, "End:", r.End)
	setRow()

	setRow("Proctors:")
	for _, p := range r.Proctors {
		setRow(p.Name, p.Role)
	}
	setRow()

	setRow("Students:")
	setRow("ID", "Name", "Attend", "Seat", "Version", "Submission", "Breaks")
	for _, sr := range r.Rows {
		setRow(sr.ID, sr.Name, sr.Attendance, sr.Seat, sr.Version, sr.Submission, sr.Breaks)
	}
	setRow()

	setRow("Summary:")
	setRow("Total Present:", r.TotalPresent)
	setRow("Total Submitted:", r.TotalSubmitted)
	setRow("Total Breaks Taken:", r.TotalBreaks)
	setRow()

	setRow("Incident Report:")
	if len(r.Incidents) == 0 {
		setRow("None")
	} else {
		for _, inc := range r.Incidents {
			setRow(inc)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "B", 28); err != nil {
		return fmt.Errorf("failed to size report columns: %w", err)
	}
	if err := f.SetColWidth(sheetName, "G", "G", 40); err != nil {
		return fmt.Errorf("failed to size report columns: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report workbook: %w", err)
	}
	return nil
}

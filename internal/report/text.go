package report

import (
	"fmt"
	"io"
)

// Column widths of the fixed-width student table.
const (
	colID         = 11
	colName       = 30
	colAttendance = 10
	colSeat       = 15
	colVersion    = 10
	colSubmission = 18
)

// linesPerPage bounds a text page; a form feed is emitted when the cursor
// nears the bottom margin, mirroring the paginated document output.
const linesPerPage = 56

// textWriter tracks the vertical cursor so long rosters paginate.
type textWriter struct {
	w    io.Writer
	line int
	err  error
}

func (tw *textWriter) printLine(s string) {
	if tw.err != nil {
		return
	}
	if tw.line >= linesPerPage {
		if _, err := io.WriteString(tw.w, "\f"); err != nil {
			tw.err = err
			return
		}
		tw.line = 0
	}
	if _, err := fmt.Fprintln(tw.w, s); err != nil {
		tw.err = err
		return
	}
	tw.line++
}

// WriteText renders the report as a paginated fixed-width document.
func (r Report) WriteText(w io.Writer) error {
	tw := &textWriter{w: w}

	tw.printLine(r.Title)
	tw.printLine("Room: " + r.Room)
	tw.printLine("Date: " + r.Date)
	tw.printLine("Start: " + r.Start + " | End: " + r.End)
	tw.printLine("")

	tw.printLine("Proctors:")
	for _, p := range r.Proctors {
		tw.printLine("- " + p.Name + " (" + p.Role + ")")
	}
	tw.printLine("")

	tw.printLine("Students:")
	tw.printLine(pad("ID", colID) + pad("Name", colName) + pad("Attend", colAttendance) +
		pad("Seat", colSeat) + pad("Version", colVersion) + pad("Submission", colSubmission) + "Breaks")
	for _, row := range r.Rows {
		tw.printLine(pad(row.ID, colID) + pad(row.Name, colName) + pad(row.Attendance, colAttendance) +
			pad(row.Seat, colSeat) + pad(row.Version, colVersion) + pad(row.Submission, colSubmission) + row.Breaks)
	}

	tw.printLine("")
	tw.printLine("Summary:")
	tw.printLine(fmt.Sprintf("- Total Present: %d", r.TotalPresent))
	tw.printLine(fmt.Sprintf("- Total Submitted: %d", r.TotalSubmitted))
	tw.printLine(fmt.Sprintf("- Total Breaks Taken: %d", r.TotalBreaks))

	tw.printLine("")
	tw.printLine("Incident Report:")
	if len(r.Incidents) == 0 {
		tw.printLine("None")
	} else {
		for _, inc := range r.Incidents {
			tw.printLine("- " + inc)
		}
	}
	return tw.err
}

// pad left-aligns s into a fixed-width cell, truncating overlong values.
func pad(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return fmt.Sprintf("%-*s", width, s)
}

// Package report derives the end-of-session summary from a session snapshot
// and renders it to a fixed-width text document or an xlsx workbook. The
// aggregation is a pure projection: it never mutates session state.
package report

import (
	"fmt"
	"strings"

	"github.com/campus-ops/exam-session-service/internal/models"
	"github.com/campus-ops/exam-session-service/internal/session"
)

// Report is the aggregated, render-ready view of a finished exam session.
type Report struct {
	Title string `json:"title"`
	Room  string `json:"room"`
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`

	Proctors []ProctorLine `json:"proctors"`
	Rows     []StudentRow  `json:"rows"`

	TotalPresent   int `json:"total_present"`
	TotalSubmitted int `json:"total_submitted"`
	TotalBreaks    int `json:"total_breaks"`

	Incidents []string `json:"incidents"`
}

type ProctorLine struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type StudentRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Attendance string `json:"attendance"`
	Seat       string `json:"seat"`
	Version    string `json:"version"`
	Submission string `json:"submission"`
	Breaks     string `json:"breaks"`
}

// Aggregate projects a session snapshot into a report. Summary counts are
// recomputed from the roster rather than read from the session's monotonic
// counters.
func Aggregate(snap session.Snapshot) Report {
	r := Report{
		Title: fmt.Sprintf("Exam Report: CS%s - %d %s", snap.Meta.CourseNum, snap.Meta.TermNum, snap.Meta.TermName),
		Room:  snap.Meta.RoomNum,
		Date:  snap.Meta.StartTime.Format("2006-01-02"),
		Start: snap.Meta.StartTime.Format("15:04"),
		End:   snap.Meta.EndTime.Format("15:04"),
	}

	for _, p := range snap.Proctors {
		r.Proctors = append(r.Proctors, ProctorLine{Name: p.Name, Role: string(p.Role)})
	}

	for _, st := range snap.Students {
		row := StudentRow{
			ID:         fmt.Sprintf("%d", st.ID),
			Name:       st.Name,
			Attendance: "Absent",
			Seat:       "--",
			Version:    "N/A",
			Submission: "Not Submitted",
			Breaks:     "---",
		}
		if st.Attended {
			row.Attendance = "Present"
			r.TotalPresent++
		}
		if st.Seat != nil {
			row.Seat = st.Seat.Abbrev()
		}
		if st.ExamVersion != 0 {
			row.Version = fmt.Sprintf("%d", st.ExamVersion)
		}
		if st.Submitted {
			row.Submission = "Submitted"
			r.TotalSubmitted++
		}
		if len(st.Breaks) > 0 {
			row.Breaks = formatBreaks(st.Breaks)
			r.TotalBreaks += len(st.Breaks)
		}
		r.Rows = append(r.Rows, row)
	}

	r.Incidents = append(r.Incidents, snap.Incidents...)
	return r
}

func formatBreaks(breaks []models.Break) string {
	var b strings.Builder
	for _, br := range breaks {
		fmt.Fprintf(&b, "[%s-%s] ", br.FormattedStart(), br.FormattedEnd())
	}
	return strings.TrimSpace(b.String())
}

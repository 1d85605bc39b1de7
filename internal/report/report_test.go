package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/campus-ops/exam-session-service/internal/models"
	"github.com/campus-ops/exam-session-service/internal/session"
)

func sampleSnapshot() session.Snapshot {
	day := time.Date(2025, 3, 24, 0, 0, 0, 0, time.Local)
	brStart := day.Add(9*time.Hour + 40*time.Minute)

	checkedIn := models.NewStudent(5, "Dana Whitfield", "2003-07-21", "photos/5.png")
	checkedIn.Seat = &models.SeatAssignment{Row: 1, Col: 1}
	checkedIn.ExamVersion = 103
	checkedIn.Attended = true
	checkedIn.Submitted = true
	checkedIn.SubmittedAt = day.Add(11*time.Hour + 20*time.Minute)
	checkedIn.LeaveForBreak(brStart)
	checkedIn.ReturnFromBreak(brStart.Add(10 * time.Minute))

	onBreak := models.NewStudent(7, "Omar Reyes", "2002-11-02", "photos/7.png")
	onBreak.Seat = &models.SeatAssignment{Row: 1, Col: 2}
	onBreak.ExamVersion = 102
	onBreak.Attended = true
	onBreak.LeaveForBreak(day.Add(10 * time.Hour))

	absent := models.NewStudent(9, "Avery Lin", "2004-02-11", "photos/9.png")

	return session.Snapshot{
		Meta: session.Meta{
			TermNum:   2,
			TermName:  "Winter",
			CourseNum: "3307",
			RoomNum:   "NS-145",
			StartTime: day.Add(9 * time.Hour),
			EndTime:   day.Add(12 * time.Hour),
		},
		Students: []models.Student{checkedIn, onBreak, absent},
		Proctors: []models.Proctor{
			{Identity: models.Identity{ID: 900, Name: "Priya Shah"}, Role: models.RoleCourseInstructor},
		},
		Incidents: []string{"Student: 7; Proctor: 900; Message: Phone on desk"},
	}
}

func TestAggregate(t *testing.T) {
	r := Aggregate(sampleSnapshot())

	if r.Title != "Exam Report: CS3307 - 2 Winter" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Date != "2025-03-24" || r.Start != "09:00" || r.End != "12:00" {
		t.Errorf("window = %s %s-%s", r.Date, r.Start, r.End)
	}
	if r.TotalPresent != 2 || r.TotalSubmitted != 1 || r.TotalBreaks != 2 {
		t.Errorf("summary = present %d, submitted %d, breaks %d; want 2/1/2",
			r.TotalPresent, r.TotalSubmitted, r.TotalBreaks)
	}
	if len(r.Rows) != 3 {
		t.Fatalf("row count = %d, want 3", len(r.Rows))
	}

	submitted := r.Rows[0]
	if submitted.Seat != "R1 C1" || submitted.Version != "103" || submitted.Submission != "Submitted" {
		t.Errorf("submitted row = %+v", submitted)
	}
	if !strings.Contains(submitted.Breaks, "[09:40:00-09:50:00]") {
		t.Errorf("breaks cell = %q", submitted.Breaks)
	}

	stillOut := r.Rows[1]
	if !strings.Contains(stillOut.Breaks, models.BreakInProgress) {
		t.Errorf("open break not flagged in-progress: %q", stillOut.Breaks)
	}

	absent := r.Rows[2]
	if absent.Attendance != "Absent" || absent.Seat != "--" || absent.Version != "N/A" || absent.Breaks != "---" {
		t.Errorf("absent row = %+v", absent)
	}
}

func TestWriteText(t *testing.T) {
	var b strings.Builder
	if err := Aggregate(sampleSnapshot()).WriteText(&b); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"Exam Report: CS3307 - 2 Winter",
		"Room: NS-145",
		"- Priya Shah (Course_Instructor)",
		"- Total Present: 2",
		"- Total Breaks Taken: 2",
		"Student: 7; Proctor: 900; Message: Phone on desk",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Fixed-width table: the name column starts at the same offset in the
	// header and every student row.
	lines := strings.Split(out, "\n")
	var header string
	for _, ln := range lines {
		if strings.HasPrefix(ln, "ID") {
			header = ln
			break
		}
	}
	if header == "" {
		t.Fatal("student table header not found")
	}
	if idx := strings.Index(header, "Name"); idx != colID {
		t.Errorf("Name column at offset %d, want %d", idx, colID)
	}
}

func TestWriteTextPaginates(t *testing.T) {
	snap := sampleSnapshot()
	// Inflate the roster past one page.
	base := snap.Students[2]
	for i := 0; i < 80; i++ {
		st := base
		st.ID = 100 + i
		snap.Students = append(snap.Students, st)
	}

	var b strings.Builder
	if err := Aggregate(snap).WriteText(&b); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(b.String(), "\f") {
		t.Error("long report should contain a page break")
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Aggregate(sampleSnapshot()).WriteXLSX(path); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if title != "Exam Report: CS3307 - 2 Winter" {
		t.Errorf("A1 = %q", title)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	var found bool
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Total Present:" {
			found = true
			if len(row) < 2 || row[1] != "2" {
				t.Errorf("Total Present row = %v", row)
			}
		}
	}
	if !found {
		t.Error("summary row not found in workbook")
	}
}

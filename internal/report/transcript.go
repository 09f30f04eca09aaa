// Package report renders a student record as a spreadsheet transcript or a
// plain-text summary.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/tracker"
)

// Sheet names.
const (
	SummarySheet = "Summary"
	MasterySheet = "Mastery"
)

// SemesterSheet is the sheet name for semester n.
func SemesterSheet(n int) string {
	return fmt.Sprintf("Semester %d", n)
}

var courseHeader = []any{"Code", "Name", "Category", "Credits", "Grade", "Status"}

// Transcript writes an xlsx workbook with a summary sheet, one sheet per
// recorded semester, and a mastery sheet.
func Transcript(w io.Writer, r *progress.StudentRecord, catalog progress.Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	s := tracker.Summarize(r, catalog)
	rows := [][]any{
		{"Trainer", s.Profile.Name},
		{"Enrollment No", s.Profile.EnrollmentNo},
		{"Specialization", s.Profile.Specialization},
		{"CGPA", s.CGPA},
		{"Credits Earned", s.CreditsEarned},
		{"Credits Attempted", s.CreditsAttempted},
		{"Catalog Credits", s.CatalogCredits},
		{"Team Size", s.TeamSize},
	}
	if err := writeRows(f, SummarySheet, 1, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}

	for _, n := range r.SemesterNumbers() {
		sem := r.Semesters[n]
		if sem == nil {
			continue
		}
		if err := writeSemester(f, SemesterSheet(n), sem, bold); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(MasterySheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", MasterySheet, err)
	}
	mastery := [][]any{{"Category", "Mastery %"}}
	for _, m := range s.Mastery {
		mastery = append(mastery, []any{m.Category.String(), round1(m.Percent)})
	}
	if err := writeRows(f, MasterySheet, 1, mastery); err != nil {
		return err
	}
	if err := f.SetCellStyle(MasterySheet, "A1", "B1", bold); err != nil {
		return fmt.Errorf("style mastery: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSemester(f *excelize.File, sheet string, sem *progress.SemesterRecord, bold int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	rows := [][]any{courseHeader}
	for _, c := range sem.Courses {
		status := "In progress"
		switch {
		case c.Completed:
			status = "Completed"
		case c.Grade == progress.FailingGrade:
			status = "Failed"
		}
		grade := string(c.Grade)
		if grade == "" {
			grade = "-"
		}
		rows = append(rows, []any{c.Code, c.Name, c.Category.String(), c.Credits, grade, status})
	}
	rows = append(rows,
		[]any{},
		[]any{"GPA", sem.GPA},
		[]any{"Credits Completed", fmt.Sprintf("%d/%d", sem.CreditsCompleted, sem.TotalCredits)},
	)
	if err := writeRows(f, sheet, 1, rows); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(courseHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style %s: %w", sheet, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, start int, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, start+i, err)
		}
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

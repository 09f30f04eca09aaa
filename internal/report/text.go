package report

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/tracker"
)

// Text prints a plain-text summary with numbers formatted for tag.
func Text(w io.Writer, s tracker.Summary, tag language.Tag) error {
	p := message.NewPrinter(tag)
	ew := &errWriter{w: w}

	name := s.Profile.Name
	if name == "" {
		name = "Trainer"
	}
	if s.Profile.EnrollmentNo != "" {
		ew.print(p.Sprintf("%s (%s)\n", name, s.Profile.EnrollmentNo))
	} else {
		ew.print(p.Sprintf("%s\n", name))
	}
	if s.Profile.Specialization != "" {
		ew.print(p.Sprintf("Specialization: %s\n", s.Profile.Specialization))
	}

	ew.print(p.Sprintf("CGPA: %s (%.1f%% of scale)\n", s.CGPA, s.CGPAProgress))
	ew.print(p.Sprintf("Credits: %d earned, %d attempted, %d in catalog\n", s.CreditsEarned, s.CreditsAttempted, s.CatalogCredits))
	ew.print(p.Sprintf("Team: %d/%d\n", s.TeamSize, progress.TeamSlots))

	earned := 0
	for _, b := range s.Badges {
		if b.Earned {
			earned++
		}
	}
	ew.print(p.Sprintf("Badges: %d/%d\n", earned, len(s.Badges)))

	for _, sem := range s.Semesters {
		if sem.Planned {
			ew.print(p.Sprintf("Semester %d: planned, %d courses\n", sem.Semester, len(sem.Courses)))
			continue
		}
		ew.print(p.Sprintf("Semester %d: GPA %s, %d/%d credits\n", sem.Semester, sem.GPA, sem.CreditsCompleted, sem.TotalCredits))
	}

	ew.print("Mastery:\n")
	for _, m := range s.Mastery {
		ew.print(p.Sprintf("  %s: %.1f%%\n", m.Category, m.Percent))
	}

	if len(s.CodingCourses) > 0 {
		ew.print("Coding growth:\n")
		for _, c := range s.CodingCourses {
			ew.print(p.Sprintf("  %s %s: %.0f%%\n", c.Code, c.Name, c.Completion))
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) print(s string) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprint(e.w, s)
}

package tracker

import (
	"time"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
)

// Summary is the settled view of a record shown on the dashboard.
type Summary struct {
	Profile          progress.Profile          `json:"profile"`
	CGPA             string                    `json:"cgpa"`
	CGPAProgress     float64                   `json:"cgpa_progress"`
	CreditsEarned    int                       `json:"credits_earned"`
	CreditsAttempted int                       `json:"credits_attempted"`
	CatalogCredits   int                       `json:"catalog_credits"`
	TeamSize         int                       `json:"team_size"`
	Badges           []progress.Badge          `json:"badges"`
	Mastery          []progress.Mastery        `json:"mastery"`
	Semesters        []progress.SemesterReport `json:"semesters"`
	CodingCourses    []progress.CourseRef      `json:"coding_courses"`
	Notices          []string                  `json:"notices,omitempty"`
}

// Summarize derives the dashboard view from a settled record.
func Summarize(r *progress.StudentRecord, catalog progress.Catalog) Summary {
	return Summary{
		Profile:          r.Profile,
		CGPA:             progress.OverallGPA(r),
		CGPAProgress:     progress.CGPAProgress(r),
		CreditsEarned:    r.TotalCreditsEarned,
		CreditsAttempted: r.TotalCreditsAttempted,
		CatalogCredits:   catalog.TotalCredits(),
		TeamSize:         progress.TeamSize(r, catalog),
		Badges:           progress.Badges(r, catalog),
		Mastery:          progress.CategoryMastery(r, nil),
		Semesters:        progress.SemesterOverview(r, catalog),
		CodingCourses:    progress.CodingCourses(r),
	}
}

// LogEntry is one line of the training log.
type LogEntry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Result is returned by every mutation: the settled summary plus any notices
// the trainer should see, such as a failed save.
type Result struct {
	Summary Summary  `json:"summary"`
	Notices []string `json:"notices,omitempty"`
}

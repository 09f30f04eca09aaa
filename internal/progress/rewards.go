package progress

import (
	"math"
	"slices"
)

// TeamSlots is the number of creature slots on the training team.
const TeamSlots = 6

// SemesterCompletion is the percentage of a semester's credits completed.
func SemesterCompletion(s *SemesterRecord) float64 {
	if s == nil {
		return 0
	}
	return percent(s.CreditsCompleted, s.TotalCredits)
}

// Badge is the reward shown for one catalog semester.
type Badge struct {
	Semester int     `json:"semester"`
	Earned   bool    `json:"earned"`
	Percent  float64 `json:"percent"`
}

// Badges returns one badge per catalog semester, earned once the semester is
// completed.
func Badges(r *StudentRecord, catalog Catalog) []Badge {
	nums := catalog.SemesterNumbers()
	out := make([]Badge, 0, len(nums))
	for _, n := range nums {
		sem := r.Semesters[n]
		out = append(out, Badge{
			Semester: n,
			Earned:   sem != nil && sem.Completed,
			Percent:  SemesterCompletion(sem),
		})
	}
	return out
}

// TeamSize is how many creatures have hatched: the share of catalog credits
// earned, scaled to TeamSlots. At least one creature is always on the team.
func TeamSize(r *StudentRecord, catalog Catalog) int {
	total := catalog.TotalCredits()
	ratio := 0.0
	if total > 0 {
		ratio = float64(r.TotalCreditsEarned) / float64(total)
	}
	n := int(math.Floor(TeamSlots * ratio))
	return min(TeamSlots, max(1, n))
}

// CGPAProgress is the overall GPA as a percentage of the 10 point scale.
func CGPAProgress(r *StudentRecord) float64 {
	if r.TotalCreditsAttempted == 0 {
		return 0
	}
	gpa := float64(r.TotalGradePoints) / float64(r.TotalCreditsAttempted)
	return gpa / 10 * 100
}

// CourseRef points at a course with trackable sub-topics.
type CourseRef struct {
	Semester   int     `json:"semester"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Completion float64 `json:"completion"`
}

// CodingCourses lists courses that carry sub-topics, ordered by semester.
func CodingCourses(r *StudentRecord) []CourseRef {
	var out []CourseRef
	for _, n := range r.SemesterNumbers() {
		sem := r.Semesters[n]
		if sem == nil {
			continue
		}
		for _, c := range sem.Courses {
			if c.Category != CategoryCoding || len(c.SubTopics) == 0 {
				continue
			}
			out = append(out, CourseRef{
				Semester:   n,
				Code:       c.Code,
				Name:       c.Name,
				Completion: SubTopicCompletion(c),
			})
		}
	}
	return out
}

// CourseLine is one course in a semester overview.
type CourseLine struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Grade   Grade  `json:"grade,omitempty"`
}

// SemesterReport summarizes one semester for the performance overview.
// Planned reports list catalog courses for semesters with no recorded data.
type SemesterReport struct {
	Semester         int          `json:"semester"`
	Planned          bool         `json:"planned"`
	CreditsCompleted int          `json:"credits_completed"`
	TotalCredits     int          `json:"total_credits"`
	GPA              string       `json:"gpa"`
	Courses          []CourseLine `json:"courses"`
}

// SemesterOverview reports every semester known to the record or catalog.
func SemesterOverview(r *StudentRecord, catalog Catalog) []SemesterReport {
	seen := make(map[int]bool)
	var nums []int
	for _, n := range append(r.SemesterNumbers(), catalog.SemesterNumbers()...) {
		if !seen[n] {
			seen[n] = true
			nums = append(nums, n)
		}
	}
	slices.Sort(nums)

	var out []SemesterReport
	for _, n := range nums {
		sem := r.Semesters[n]
		if sem != nil && sem.TotalCredits > 0 {
			rep := SemesterReport{
				Semester:         n,
				CreditsCompleted: sem.CreditsCompleted,
				TotalCredits:     sem.TotalCredits,
				GPA:              sem.GPA,
			}
			for _, c := range sem.Courses {
				rep.Courses = append(rep.Courses, CourseLine{Code: c.Code, Name: c.Name, Credits: c.Credits, Grade: c.Grade})
			}
			out = append(out, rep)
			continue
		}
		templates := catalog.Semesters[n]
		if len(templates) == 0 {
			continue
		}
		rep := SemesterReport{Semester: n, Planned: true, GPA: zeroGPA}
		for _, t := range templates {
			rep.Courses = append(rep.Courses, CourseLine{Code: normalizeCode(t.Code), Name: t.Name, Credits: t.Credits})
			rep.TotalCredits += t.Credits
		}
		out = append(out, rep)
	}
	return out
}

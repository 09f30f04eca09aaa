package progress

import (
	"fmt"
	"strconv"
	"strings"
)

const zeroGPA = "0.00"

// Seed builds a fresh record from the catalog: one semester per catalog
// semester, every course in progress, sub-topics all incomplete. Cumulative
// totals start at zero.
func Seed(catalog Catalog) *StudentRecord {
	r := &StudentRecord{
		Semesters: make(map[int]*SemesterRecord, len(catalog.Semesters)),
	}
	for _, n := range catalog.SemesterNumbers() {
		templates := catalog.Semesters[n]
		sem := &SemesterRecord{
			Courses: make([]CourseRecord, 0, len(templates)),
			GPA:     zeroGPA,
		}
		for _, t := range templates {
			sem.Courses = append(sem.Courses, CourseRecord{
				Code:      normalizeCode(t.Code),
				Name:      t.Name,
				Credits:   t.Credits,
				Category:  t.Category,
				SubTopics: subTopicsFrom(t),
			})
			sem.TotalCredits += t.Credits
		}
		r.Semesters[n] = sem
	}
	return r
}

// Recompute derives every semester's totals, GPA, and completion, then the
// record-level totals as exact sums across semesters. It reads only course
// grades and credit weights, so calling it twice yields the same record.
func Recompute(r *StudentRecord) {
	r.TotalCreditsEarned = 0
	r.TotalGradePoints = 0
	r.TotalCreditsAttempted = 0

	for _, sem := range r.Semesters {
		if sem == nil {
			continue
		}
		attempted, completed, points := 0, 0, 0
		for i := range sem.Courses {
			c := &sem.Courses[i]
			c.Completed = c.Grade.Passing()
			attempted += c.Credits
			if c.Completed {
				completed += c.Credits
			}
			if p, ok := c.Grade.Points(); ok {
				points += p * c.Credits
			}
		}
		sem.TotalCredits = attempted
		sem.CreditsCompleted = completed
		sem.GradePointsEarned = points
		sem.Completed = attempted > 0 && completed == attempted
		sem.GPA = formatGPA(points, attempted)

		r.TotalCreditsEarned += completed
		r.TotalGradePoints += points
		r.TotalCreditsAttempted += attempted
	}
}

// CourseInput is the payload of AddOrUpdateCourse.
type CourseInput struct {
	Semester int
	Code     string
	Name     string
	Grade    Grade
	Credits  int
}

func (in CourseInput) validate() error {
	const op = "AddOrUpdateCourse"
	switch {
	case in.Semester <= 0:
		return newError(op, ErrValidation, fmt.Sprintf("semester must be positive, got %d", in.Semester))
	case strings.TrimSpace(in.Code) == "":
		return newError(op, ErrValidation, "course code is required")
	case strings.TrimSpace(in.Name) == "":
		return newError(op, ErrValidation, "course name is required")
	case in.Credits <= 0:
		return newError(op, ErrValidation, fmt.Sprintf("credits must be positive, got %d", in.Credits))
	case in.Grade != GradeNone && !in.Grade.Valid():
		return newError(op, ErrValidation, fmt.Sprintf("unrecognized grade %q", in.Grade))
	}
	return nil
}

// AddOrUpdateCourse records a grade. An existing course with the same code in
// the semester is overwritten in place; otherwise the course is appended,
// creating the semester if needed. tmpl is the catalog entry for the code in
// that semester, or nil when the catalog has none. Invalid input leaves r
// untouched.
func AddOrUpdateCourse(r *StudentRecord, in CourseInput, tmpl *CourseTemplate) error {
	if err := in.validate(); err != nil {
		return err
	}
	code := normalizeCode(in.Code)
	if tmpl != nil && normalizeCode(tmpl.Code) != code {
		return newError("AddOrUpdateCourse", ErrValidation,
			fmt.Sprintf("catalog template %s does not match course %s", tmpl.Code, code))
	}

	category := CategoryUnknown
	if tmpl != nil {
		category = tmpl.Category
	}

	if r.Semesters == nil {
		r.Semesters = make(map[int]*SemesterRecord)
	}
	sem, ok := r.Semesters[in.Semester]
	if !ok || sem == nil {
		sem = &SemesterRecord{GPA: zeroGPA}
		r.Semesters[in.Semester] = sem
	}

	name := strings.TrimSpace(in.Name)
	if c, found := sem.course(code); found {
		c.Name = name
		c.Grade = in.Grade
		c.Credits = in.Credits
		c.Category = category
		c.Completed = in.Grade.Passing()
		if len(c.SubTopics) == 0 && tmpl != nil && category == CategoryCoding {
			c.SubTopics = subTopicsFrom(*tmpl)
		}
	} else {
		c := CourseRecord{
			Code:      code,
			Name:      name,
			Credits:   in.Credits,
			Category:  category,
			Grade:     in.Grade,
			Completed: in.Grade.Passing(),
		}
		if tmpl != nil && category == CategoryCoding {
			c.SubTopics = subTopicsFrom(*tmpl)
		}
		sem.Courses = append(sem.Courses, c)
	}

	Recompute(r)
	return nil
}

// ToggleSubTopic sets the completion of one sub-topic. Sub-topics do not feed
// credit or GPA totals, but the record is still recomputed.
func ToggleSubTopic(r *StudentRecord, semester int, code string, index int, completed bool) error {
	const op = "ToggleSubTopic"
	sem, ok := r.Semesters[semester]
	if !ok || sem == nil {
		return newError(op, ErrNotFound, fmt.Sprintf("semester %d not found", semester))
	}
	c, ok := sem.course(code)
	if !ok {
		return newError(op, ErrNotFound, fmt.Sprintf("course %s not found in semester %d", normalizeCode(code), semester))
	}
	if index < 0 || index >= len(c.SubTopics) {
		return newError(op, ErrNotFound, fmt.Sprintf("sub-topic %d not found in %s", index, c.Code))
	}

	c.SubTopics[index].Completed = completed
	Recompute(r)
	return nil
}

// UpdateProfile replaces the trainer settings. The name is required.
func UpdateProfile(r *StudentRecord, p Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	p.EnrollmentNo = strings.TrimSpace(p.EnrollmentNo)
	p.Specialization = strings.TrimSpace(p.Specialization)
	if p.Name == "" {
		return newError("UpdateProfile", ErrValidation, "trainer name is required")
	}
	r.Profile = p
	Recompute(r)
	return nil
}

func formatGPA(points, credits int) string {
	if credits == 0 {
		return zeroGPA
	}
	return strconv.FormatFloat(float64(points)/float64(credits), 'f', 2, 64)
}

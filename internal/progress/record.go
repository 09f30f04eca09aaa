package progress

import (
	"slices"
	"strings"
)

// CourseTemplate is a catalog entry for one course.
type CourseTemplate struct {
	Code      string
	Name      string
	Credits   int
	Category  Category
	SubTopics []string
}

// HasSubTopics reports whether the template defines trackable sub-topics.
// Only Coding courses carry them.
func (t CourseTemplate) HasSubTopics() bool {
	return t.Category == CategoryCoding && len(t.SubTopics) > 0
}

// Catalog is the static curriculum: semester number to ordered courses.
type Catalog struct {
	Semesters map[int][]CourseTemplate
}

// SemesterNumbers returns the catalog's semester numbers in ascending order.
func (c Catalog) SemesterNumbers() []int {
	nums := make([]int, 0, len(c.Semesters))
	for n := range c.Semesters {
		nums = append(nums, n)
	}
	slices.Sort(nums)
	return nums
}

// Template finds the catalog course with the given code in a semester.
func (c Catalog) Template(semester int, code string) (CourseTemplate, bool) {
	code = normalizeCode(code)
	for _, t := range c.Semesters[semester] {
		if normalizeCode(t.Code) == code {
			return t, true
		}
	}
	return CourseTemplate{}, false
}

// TotalCredits is the credit weight of every course in the catalog.
func (c Catalog) TotalCredits() int {
	total := 0
	for _, courses := range c.Semesters {
		for _, t := range courses {
			total += t.Credits
		}
	}
	return total
}

// Profile holds the trainer's free-text settings.
type Profile struct {
	Name           string `json:"name"`
	EnrollmentNo   string `json:"enrollment_no"`
	Specialization string `json:"specialization"`
}

// SubTopic is one checklist item within a course.
type SubTopic struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// CourseRecord is a course as taken by the student.
type CourseRecord struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Credits   int        `json:"credits"`
	Category  Category   `json:"category"`
	Grade     Grade      `json:"grade,omitempty"`
	Completed bool       `json:"completed"`
	SubTopics []SubTopic `json:"sub_topics,omitempty"`
}

// SemesterRecord holds a semester's courses and derived totals.
type SemesterRecord struct {
	Courses           []CourseRecord `json:"courses"`
	CreditsCompleted  int            `json:"credits_completed"`
	TotalCredits      int            `json:"total_credits"`
	GradePointsEarned int            `json:"grade_points_earned"`
	GPA               string         `json:"gpa"`
	Completed         bool           `json:"completed"`
}

func (s *SemesterRecord) course(code string) (*CourseRecord, bool) {
	code = normalizeCode(code)
	for i := range s.Courses {
		if normalizeCode(s.Courses[i].Code) == code {
			return &s.Courses[i], true
		}
	}
	return nil, false
}

// StudentRecord is the mutable root of a student's progress.
type StudentRecord struct {
	Profile               Profile                 `json:"profile"`
	Semesters             map[int]*SemesterRecord `json:"semesters"`
	TotalCreditsEarned    int                     `json:"total_credits_earned"`
	TotalGradePoints      int                     `json:"total_grade_points"`
	TotalCreditsAttempted int                     `json:"total_credits_attempted"`
}

// SemesterNumbers returns the record's semester numbers in ascending order.
func (r *StudentRecord) SemesterNumbers() []int {
	nums := make([]int, 0, len(r.Semesters))
	for n := range r.Semesters {
		nums = append(nums, n)
	}
	slices.Sort(nums)
	return nums
}

// Course returns the course with the given code in a semester.
func (r *StudentRecord) Course(semester int, code string) (CourseRecord, bool) {
	sem, ok := r.Semesters[semester]
	if !ok || sem == nil {
		return CourseRecord{}, false
	}
	c, ok := sem.course(code)
	if !ok {
		return CourseRecord{}, false
	}
	return *c, true
}

// Clone returns a deep copy of r.
func Clone(r *StudentRecord) *StudentRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Semesters == nil {
		return &out
	}
	out.Semesters = make(map[int]*SemesterRecord, len(r.Semesters))
	for n, sem := range r.Semesters {
		if sem == nil {
			out.Semesters[n] = nil
			continue
		}
		s := *sem
		s.Courses = slices.Clone(sem.Courses)
		for i := range s.Courses {
			s.Courses[i].SubTopics = slices.Clone(s.Courses[i].SubTopics)
		}
		out.Semesters[n] = &s
	}
	return &out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func subTopicsFrom(t CourseTemplate) []SubTopic {
	if !t.HasSubTopics() {
		return nil
	}
	out := make([]SubTopic, len(t.SubTopics))
	for i, name := range t.SubTopics {
		out[i] = SubTopic{Name: name}
	}
	return out
}

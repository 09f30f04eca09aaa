// Package progress folds a student's course and grade record into summary
// statistics and keeps the derived fields consistent after every mutation.
// It performs no I/O; callers own the record and serialize mutations.
package progress

import (
	"fmt"
	"strings"
)

// Grade is a letter grade. GradeNone marks a course still in progress.
type Grade string

const (
	GradeNone Grade = ""
	GradeS    Grade = "S"
	GradeA    Grade = "A"
	GradeB    Grade = "B"
	GradeC    Grade = "C"
	GradeD    Grade = "D"
	GradeE    Grade = "E"
	GradeF    Grade = "F"
)

// FailingGrade never counts towards completed credits.
const FailingGrade = GradeF

var gradePoints = map[Grade]int{
	GradeS: 10,
	GradeA: 9,
	GradeB: 8,
	GradeC: 7,
	GradeD: 6,
	GradeE: 5,
	GradeF: 0,
}

// Grades lists the recognized letters from best to worst.
func Grades() []Grade {
	return []Grade{GradeS, GradeA, GradeB, GradeC, GradeD, GradeE, GradeF}
}

// Points returns the grade point value. ok is false for GradeNone and
// unrecognized letters.
func (g Grade) Points() (int, bool) {
	p, ok := gradePoints[g]
	return p, ok
}

// Valid reports whether g is one of the recognized letters.
func (g Grade) Valid() bool {
	_, ok := gradePoints[g]
	return ok
}

// Passing reports whether g is present and not the failing grade.
func (g Grade) Passing() bool {
	return g.Valid() && g != FailingGrade
}

// ParseGrade normalizes s and returns the matching grade. An empty string
// parses to GradeNone.
func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(s)))
	if g == GradeNone || g.Valid() {
		return g, nil
	}
	return GradeNone, newError("ParseGrade", ErrValidation, fmt.Sprintf("unrecognized grade %q", s))
}

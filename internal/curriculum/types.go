package curriculum

import (
	"fmt"
	"strings"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
)

// CatalogFile is a curriculum catalog as written in YAML.
type CatalogFile struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Program   string         `yaml:"program"`
	Semesters []SemesterFile `yaml:"semesters"`
}

// SemesterFile lists the planned courses of one semester.
type SemesterFile struct {
	Number  int          `yaml:"number"`
	Courses []CourseFile `yaml:"courses"`
}

// CourseFile is a single planned course.
type CourseFile struct {
	Code      string   `yaml:"code"`
	Name      string   `yaml:"name"`
	Credits   int      `yaml:"credits"`
	Type      string   `yaml:"type"`
	SubTopics []string `yaml:"sub_topics"`
}

// ToCatalog validates the file and converts it into the aggregator's catalog.
func (f CatalogFile) ToCatalog() (progress.Catalog, error) {
	cat := progress.Catalog{Semesters: make(map[int][]progress.CourseTemplate, len(f.Semesters))}
	for _, sem := range f.Semesters {
		if sem.Number <= 0 {
			return progress.Catalog{}, fmt.Errorf("catalog %s: semester number must be positive, got %d", f.ID, sem.Number)
		}
		if _, dup := cat.Semesters[sem.Number]; dup {
			return progress.Catalog{}, fmt.Errorf("catalog %s: semester %d listed twice", f.ID, sem.Number)
		}

		seen := make(map[string]bool, len(sem.Courses))
		templates := make([]progress.CourseTemplate, 0, len(sem.Courses))
		for _, c := range sem.Courses {
			code := strings.ToUpper(strings.TrimSpace(c.Code))
			switch {
			case code == "":
				return progress.Catalog{}, fmt.Errorf("catalog %s: semester %d has a course without a code", f.ID, sem.Number)
			case seen[code]:
				return progress.Catalog{}, fmt.Errorf("catalog %s: course %s listed twice in semester %d", f.ID, code, sem.Number)
			case c.Credits <= 0:
				return progress.Catalog{}, fmt.Errorf("catalog %s: course %s must have positive credits, got %d", f.ID, code, c.Credits)
			}
			seen[code] = true

			templates = append(templates, progress.CourseTemplate{
				Code:      code,
				Name:      c.Name,
				Credits:   c.Credits,
				Category:  progress.ParseCategory(c.Type),
				SubTopics: c.SubTopics,
			})
		}
		cat.Semesters[sem.Number] = templates
	}
	return cat, nil
}

package progress

import "strings"

// Category groups courses for mastery reporting.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryCoding
	CategoryMath
	CategoryScience
	CategoryEngineering
	CategoryProject
	CategoryGeneral
	CategoryComputerScience
	CategorySoftwareEngineering
	CategoryElective
)

var categoryNames = map[Category]string{
	CategoryUnknown:             "Unknown",
	CategoryCoding:              "Coding",
	CategoryMath:                "Math",
	CategoryScience:             "Science",
	CategoryEngineering:         "Engineering",
	CategoryProject:             "Project",
	CategoryGeneral:             "General",
	CategoryComputerScience:     "Computer Science",
	CategorySoftwareEngineering: "Software Engineering",
	CategoryElective:            "Elective",
}

// MasteryCategories are the categories shown on the type mastery panel.
var MasteryCategories = []Category{
	CategoryCoding,
	CategoryMath,
	CategoryScience,
	CategoryEngineering,
	CategoryProject,
	CategoryGeneral,
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[CategoryUnknown]
}

// ParseCategory maps a catalog type name to a Category. Matching ignores case
// and surrounding whitespace; anything unrecognized is CategoryUnknown.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for c, name := range categoryNames {
		if strings.EqualFold(name, s) {
			return c
		}
	}
	return CategoryUnknown
}

// MarshalText encodes the display name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a display name; unknown names become CategoryUnknown.
func (c *Category) UnmarshalText(text []byte) error {
	*c = ParseCategory(string(text))
	return nil
}

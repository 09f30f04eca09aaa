package progress

// OverallGPA is total grade points over total credits attempted, to two
// decimals. A record with nothing attempted reports "0.00".
func OverallGPA(r *StudentRecord) string {
	return formatGPA(r.TotalGradePoints, r.TotalCreditsAttempted)
}

// Mastery is the share of a category's credits that have been completed.
type Mastery struct {
	Category Category `json:"category"`
	Percent  float64  `json:"percent"`
}

// CategoryMastery reports completed over attempted credits per category, as a
// percentage, in the order requested. Categories with nothing attempted
// report 0. A nil list uses MasteryCategories.
func CategoryMastery(r *StudentRecord, categories []Category) []Mastery {
	if categories == nil {
		categories = MasteryCategories
	}

	attempted := make(map[Category]int)
	completed := make(map[Category]int)
	for _, sem := range r.Semesters {
		if sem == nil {
			continue
		}
		for _, c := range sem.Courses {
			attempted[c.Category] += c.Credits
			if c.Completed {
				completed[c.Category] += c.Credits
			}
		}
	}

	out := make([]Mastery, len(categories))
	for i, cat := range categories {
		out[i] = Mastery{Category: cat, Percent: percent(completed[cat], attempted[cat])}
	}
	return out
}

// SubTopicCompletion is the percentage of a course's sub-topics marked done.
func SubTopicCompletion(c CourseRecord) float64 {
	done := 0
	for _, t := range c.SubTopics {
		if t.Completed {
			done++
		}
	}
	return percent(done, len(c.SubTopics))
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

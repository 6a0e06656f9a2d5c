// Package schedule searches course sections for a clash-free timetable.
package schedule

import "github.com/campusbot/course-ai-platform/internal/catalog"

// Assignment pairs a course with the sections chosen for it, one per
// meeting kind the course offers.
type Assignment struct {
	CourseCode string
	Sections   []catalog.Section
}

// Plan picks one lecture section per course, plus one tutorial and one
// practical where the course offers them, and returns the first
// combination whose individual time slots are pairwise distinct. The
// lecture pool is always consulted, so a course without lecture sections
// admits no choice and the search fails. Order is deterministic: courses
// as given, sections in catalog order, later courses varying fastest.
func Plan(courses []catalog.Course) ([]Assignment, bool) {
	choices := make([][][]catalog.Section, len(courses))
	for i := range courses {
		choices[i] = sectionChoices(&courses[i])
		if len(choices[i]) == 0 {
			return nil, false
		}
	}

	idx := make([]int, len(courses))
	for {
		if plan, ok := assemble(courses, choices, idx); ok {
			return plan, true
		}
		pos := len(idx) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(choices[pos]) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return nil, false
		}
	}
}

// sectionChoices expands a course into every way of picking one section
// per pool. Tutorial and practical pools are skipped when empty, the
// lecture pool never is.
func sectionChoices(c *catalog.Course) [][]catalog.Section {
	pools := [][]catalog.Section{c.SectionsOfKind(catalog.KindLecture)}
	if tut := c.SectionsOfKind(catalog.KindTutorial); len(tut) > 0 {
		pools = append(pools, tut)
	}
	if prac := c.SectionsOfKind(catalog.KindPractical); len(prac) > 0 {
		pools = append(pools, prac)
	}

	combos := [][]catalog.Section{nil}
	for _, pool := range pools {
		next := make([][]catalog.Section, 0, len(combos)*len(pool))
		for _, combo := range combos {
			for _, sec := range pool {
				grown := make([]catalog.Section, len(combo), len(combo)+1)
				copy(grown, combo)
				next = append(next, append(grown, sec))
			}
		}
		combos = next
	}
	return combos
}

// assemble checks the combination named by idx for slot collisions and,
// when clean, materializes it. Slots are compared as raw strings, so the
// same slot appearing twice anywhere in the combination is a clash.
func assemble(courses []catalog.Course, choices [][][]catalog.Section, idx []int) ([]Assignment, bool) {
	seen := make(map[string]struct{})
	plan := make([]Assignment, len(courses))
	for i := range courses {
		sections := choices[i][idx[i]]
		for _, sec := range sections {
			for _, slot := range sec.DaysTimes {
				if _, dup := seen[slot]; dup {
					return nil, false
				}
				seen[slot] = struct{}{}
			}
		}
		plan[i] = Assignment{CourseCode: courses[i].CourseCode, Sections: sections}
	}
	return plan, true
}

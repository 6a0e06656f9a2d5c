package catalog

import (
	"regexp"
	"strings"
)

var (
	nonAlnum          = regexp.MustCompile(`[^a-z0-9]`)
	courseCodePattern = regexp.MustCompile(`[a-z]{2,4}\s*f?\s*\d{3}`)
)

// Normalize lowercases s and strips every character outside [a-z0-9], so
// "CS F111", "cs-f111" and "csf111" all compare equal.
func Normalize(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// ExtractCourseCode pulls the first course-code-shaped token out of an
// utterance ("is cs f111 offered" yields "CS F111"). Empty when the
// utterance carries no code.
func ExtractCourseCode(utterance string) string {
	match := courseCodePattern.FindString(strings.ToLower(utterance))
	if match == "" {
		return ""
	}
	return strings.ToUpper(match)
}

// Find locates a course by normalized code equality or name substring, in
// catalog order. The bool reports whether anything matched.
func Find(courses []Course, query string) (*Course, bool) {
	q := Normalize(query)
	if q == "" {
		return nil, false
	}
	for i := range courses {
		code := Normalize(courses[i].CourseCode)
		name := Normalize(courses[i].CourseName)
		if q == code || strings.Contains(name, q) {
			return &courses[i], true
		}
	}
	return nil, false
}

// FindByCode matches the exact course code ignoring case.
func FindByCode(courses []Course, code string) (*Course, bool) {
	if code == "" {
		return nil, false
	}
	for i := range courses {
		if strings.EqualFold(courses[i].CourseCode, code) {
			return &courses[i], true
		}
	}
	return nil, false
}

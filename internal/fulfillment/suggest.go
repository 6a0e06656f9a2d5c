package fulfillment

import (
	"fmt"
	"strings"

	"github.com/campusbot/course-ai-platform/internal/memory"
)

// followUpHints builds the optional "I can also help you with" tail from
// the user's history as it stands after this turn.
func followUpHints(rec memory.Record) string {
	var suggestions []string
	if rec.LastCourseCode != "" {
		suggestions = append(suggestions,
			fmt.Sprintf("Would you like to get more details about %s?", rec.LastCourseCode))
	}
	if rec.LastProfessor != "" && len(rec.ProfessorHistory) == 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("Would you like to see student reviews for Professor %s?", rec.LastProfessor))
	}
	if n := len(rec.CoursesHistory); n >= 2 {
		suggestions = append(suggestions,
			fmt.Sprintf("Would you like to compare %s with %s?", rec.CoursesHistory[n-1], rec.CoursesHistory[n-2]))
	}
	if len(suggestions) == 0 {
		return ""
	}
	return "\n\nI can also help you with:\n- " + strings.Join(suggestions, "\n- ")
}

// mergeUpdates overlays this turn's updates on the loaded record.
func mergeUpdates(rec memory.Record, u memory.Updates) memory.Record {
	if u.LastCourseCode != nil {
		rec.LastCourseCode = *u.LastCourseCode
	}
	if u.LastProfessor != nil {
		rec.LastProfessor = *u.LastProfessor
	}
	if u.LastInstructors != nil {
		rec.LastInstructors = memory.StringList(u.LastInstructors)
	}
	if u.CoursesHistory != nil {
		rec.CoursesHistory = memory.StringList(u.CoursesHistory)
	}
	if u.ProfessorHistory != nil {
		rec.ProfessorHistory = memory.StringList(u.ProfessorHistory)
	}
	return rec
}

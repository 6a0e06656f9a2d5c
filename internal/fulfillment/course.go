package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/campusbot/course-ai-platform/internal/catalog"
	"github.com/campusbot/course-ai-platform/internal/memory"
)

// historyCap bounds the stored lookup histories. Once a history is full
// new entries are dropped, not rotated in.
const historyCap = 10

// extractCourseCode resolves which course the user means: the
// courseIdentifier slot first, then a code-shaped token in the
// transcript, then the course remembered from earlier turns.
func extractCourseCode(event Event, rec memory.Record) string {
	if v := event.slotValue("courseIdentifier"); v != "" {
		return v
	}
	if code := catalog.ExtractCourseCode(event.InputTranscript); code != "" {
		return code
	}
	return rec.LastCourseCode
}

func (e *Engine) handleAvailability(ctx context.Context, event Event, rec memory.Record) (string, memory.Updates, error) {
	courseName := extractCourseCode(event, rec)
	if courseName == "" {
		return "", memory.Updates{}, errors.New("Course name not provided.")
	}

	courses, err := e.catalog.Fetch(ctx)
	if err != nil {
		return "", memory.Updates{}, err
	}

	found, ok := catalog.Find(courses, courseName)
	if !ok {
		msg := fmt.Sprintf("❌ Sorry, '%s' does not appear to be offered this semester.", courseName)
		return msg, memory.Updates{}, nil
	}

	msg := fmt.Sprintf("✅ Yes, the course '%s' (%s) is being offered. Would you like to know the instructor, credits, exam dates, or schedule?",
		found.CourseName, found.CourseCode)
	return msg, courseUpdates(found, rec), nil
}

func (e *Engine) handleCourseDetails(ctx context.Context, event Event, rec memory.Record) (string, memory.Updates, error) {
	transcript := strings.ToLower(event.InputTranscript)
	fullDetails := containsAny(transcript, "full", "all", "everything", "details")

	courseCode := extractCourseCode(event, rec)
	if courseCode == "" {
		return "", memory.Updates{}, errors.New("No course selected previously. Please mention the course first.")
	}

	courses, err := e.catalog.Fetch(ctx)
	if err != nil {
		return "", memory.Updates{}, err
	}

	// Exact code match first, flexible matching second.
	found, ok := catalog.FindByCode(courses, courseCode)
	if !ok {
		found, ok = catalog.Find(courses, courseCode)
	}
	if !ok {
		return "", memory.Updates{}, fmt.Errorf("Course '%s' not found in data.", courseCode)
	}

	updates := courseUpdates(found, rec)

	if fullDetails {
		return fullCourseDetails(found), updates, nil
	}

	detailType := strings.ToLower(event.slotValue("courseDetailType"))
	if detailType == "" {
		detailType = sniffDetailType(transcript)
	}
	return detailMessage(found, detailType), updates, nil
}

// courseUpdates records the course just discussed: the standard-format
// code, its instructors (first one doubles as the professor a bare
// "reviews" question refers to) and the lookup history.
func courseUpdates(found *catalog.Course, rec memory.Record) memory.Updates {
	u := memory.Updates{LastCourseCode: aws.String(found.CourseCode)}
	if instructors := found.Instructors(); len(instructors) > 0 {
		u.LastInstructors = instructors
		u.LastProfessor = aws.String(instructors[0])
	}
	if history, changed := appendCapped(rec.CoursesHistory, found.CourseCode); changed {
		u.CoursesHistory = history
	}
	return u
}

// appendCapped adds item to history unless already present, keeping at
// most historyCap entries.
func appendCapped(history []string, item string) ([]string, bool) {
	for _, h := range history {
		if h == item {
			return nil, false
		}
	}
	grown := append(append([]string(nil), history...), item)
	if len(grown) > historyCap {
		grown = grown[:historyCap]
	}
	return grown, true
}

// detailKeywords maps utterance words to the canonical detail type, in
// priority order.
var detailKeywords = []struct {
	detail string
	words  []string
}{
	{"instructor", []string{"instructor", "professor", "teacher", "faculty"}},
	{"credit", []string{"credit", "unit"}},
	{"midsem", []string{"midsem", "mid semester", "mid-sem"}},
	{"compre", []string{"compre", "comprehensive", "final exam"}},
	{"schedule", []string{"schedule", "time", "section", "room"}},
}

func sniffDetailType(transcript string) string {
	for _, group := range detailKeywords {
		for _, w := range group.words {
			if strings.Contains(transcript, w) {
				return group.detail
			}
		}
	}
	return ""
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func detailMessage(found *catalog.Course, detailType string) string {
	switch {
	case strings.Contains(detailType, "instructor"):
		instructors := found.Instructors()
		if len(instructors) == 0 {
			return fmt.Sprintf("No instructor information available for %s.", found.CourseCode)
		}
		return fmt.Sprintf("Instructors for %s are: %s", found.CourseCode, strings.Join(instructors, ", "))
	case strings.Contains(detailType, "credit"), strings.Contains(detailType, "unit"):
		return fmt.Sprintf("%s has %d Lecture, %d Practical, %d Unit(s).", found.CourseCode, found.L, found.P, found.U)
	case strings.Contains(detailType, "midsem"):
		return fmt.Sprintf("Midsem for %s is scheduled on %s.", found.CourseCode, orDefault(found.Midsem, "Not available"))
	case strings.Contains(detailType, "compre"):
		return fmt.Sprintf("Compre for %s is scheduled on %s.", found.CourseCode, orDefault(found.Compre, "Not available"))
	case strings.Contains(detailType, "schedule"), strings.Contains(detailType, "section"), strings.Contains(detailType, "room"):
		return scheduleMessage(found)
	default:
		return "I can provide instructor, credits, exam dates or schedule. Please specify which detail you'd like."
	}
}

func scheduleMessage(found *catalog.Course) string {
	if len(found.Sections) == 0 {
		return fmt.Sprintf("No schedule information available for %s.", found.CourseCode)
	}
	lines := make([]string, 0, len(found.Sections))
	for _, sec := range found.Sections {
		lines = append(lines, fmt.Sprintf("%s (%s) in %s at %s",
			orDefault(sec.SectionName, "Unknown"),
			orDefault(sec.Instructor, "Unknown"),
			orDefault(sec.Room, "Unknown"),
			strings.Join(sec.DaysTimes, ", ")))
	}
	return "📅 Schedule:\n" + strings.Join(lines, "\n")
}

func fullCourseDetails(found *catalog.Course) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📘 *%s* (%s)\n", found.CourseName, found.CourseCode)
	fmt.Fprintf(&b, "- L/P/U Credits: %d/%d/%d\n", found.L, found.P, found.U)
	fmt.Fprintf(&b, "- Lecture Sections: %d\n", found.LectureSections)
	fmt.Fprintf(&b, "- Tutorial Sections: %d\n", found.TutorialSections)
	fmt.Fprintf(&b, "- Practical Sections: %d\n", found.PracticalSections)
	fmt.Fprintf(&b, "- Midsem: %s\n", orDefault(found.Midsem, "N/A"))
	fmt.Fprintf(&b, "- Compre: %s\n", orDefault(found.Compre, "N/A"))
	fmt.Fprintf(&b, "- Instructor-in-Charge: %s\n", orDefault(found.IC, "N/A"))
	b.WriteString("- Sections:\n")
	for _, sec := range found.Sections {
		fmt.Fprintf(&b, "   - %s: %s in %s (%s)\n",
			orDefault(sec.SectionName, "Unknown"),
			orDefault(sec.Instructor, "Unknown"),
			orDefault(sec.Room, "Unknown"),
			strings.Join(sec.DaysTimes, ", "))
	}
	return b.String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

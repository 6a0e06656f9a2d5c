package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusbot/course-ai-platform/internal/catalog"
	"github.com/campusbot/course-ai-platform/internal/memory"
	"github.com/campusbot/course-ai-platform/internal/schedule"
)

var clashSlots = []string{"course1", "course2", "course3", "course4"}

func (e *Engine) handleClashes(ctx context.Context, event Event) (string, memory.Updates, error) {
	var queries []string
	for _, name := range clashSlots {
		if v := event.slotValue(name); v != "" {
			queries = append(queries, v)
		}
	}
	if len(queries) < 2 {
		return "", memory.Updates{}, errors.New("Please specify at least two courses to check for clashes.")
	}

	courses, err := e.catalog.Fetch(ctx)
	if err != nil {
		return "", memory.Updates{}, err
	}

	selected := make([]catalog.Course, 0, len(queries))
	for _, q := range queries {
		found, ok := catalog.Find(courses, q)
		if !ok {
			return "", memory.Updates{}, fmt.Errorf("Course '%s' not found in data.", q)
		}
		selected = append(selected, *found)
	}

	plan, ok := schedule.Plan(selected)
	if !ok {
		return "⚠️ I'm sorry, no combination of those courses is clash-free.", memory.Updates{}, nil
	}

	lines := make([]string, 0, len(plan))
	for _, a := range plan {
		parts := make([]string, 0, len(a.Sections))
		for _, sec := range a.Sections {
			parts = append(parts, fmt.Sprintf("%s %s (%s)", sec.Kind(), sec.SectionName, strings.Join(sec.DaysTimes, ",")))
		}
		lines = append(lines, fmt.Sprintf("• %s → %s", a.CourseCode, strings.Join(parts, ", ")))
	}
	return "✅ Here's one clash-free schedule:\n" + strings.Join(lines, "\n"), memory.Updates{}, nil
}

package fulfillment

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"

	"github.com/campusbot/course-ai-platform/internal/memory"
)

func TestFollowUpHintsEmptyHistory(t *testing.T) {
	assert.Empty(t, followUpHints(memory.Record{}))
}

func TestFollowUpHintsSkipsReviewedProfessors(t *testing.T) {
	rec := memory.Record{
		LastProfessor:    "A Sharma",
		ProfessorHistory: memory.StringList{"A Sharma"},
	}
	assert.NotContains(t, followUpHints(rec), "student reviews")
}

func TestFollowUpHintsComparesRecentCourses(t *testing.T) {
	rec := memory.Record{CoursesHistory: memory.StringList{"CS F111", "MATH F211", "BIO F110"}}
	assert.Contains(t, followUpHints(rec), "Would you like to compare BIO F110 with MATH F211?")
}

func TestMergeUpdatesOverlaysChangedFields(t *testing.T) {
	rec := memory.Record{
		LastCourseCode:   "CS F111",
		LastProfessor:    "Rahul Banerjee",
		ProfessorHistory: memory.StringList{"Rahul Banerjee"},
	}
	u := memory.Updates{
		LastCourseCode: aws.String("MATH F211"),
		CoursesHistory: []string{"CS F111", "MATH F211"},
	}

	merged := mergeUpdates(rec, u)
	assert.Equal(t, "MATH F211", merged.LastCourseCode)
	assert.Equal(t, "Rahul Banerjee", merged.LastProfessor, "untouched fields survive")
	assert.Equal(t, memory.StringList{"CS F111", "MATH F211"}, merged.CoursesHistory)
	assert.Equal(t, memory.StringList{"Rahul Banerjee"}, merged.ProfessorHistory)
}

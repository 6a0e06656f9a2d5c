package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/campusbot/course-ai-platform/internal/memory"
	"github.com/campusbot/course-ai-platform/internal/reviews"
)

// reviewLimit bounds a single review in the reply, in characters.
const reviewLimit = 300

func (e *Engine) handleProfReviews(ctx context.Context, event Event, rec memory.Record) (string, memory.Updates, error) {
	professorName := event.slotValue("profIdentifier")
	if professorName == "" {
		professorName = rec.LastProfessor
	}
	if professorName == "" {
		return "", memory.Updates{}, errors.New("Professor name not provided. Please specify which professor you want reviews for.")
	}

	set, err := e.reviews.Fetch(ctx)
	if err != nil {
		return "", memory.Updates{}, err
	}

	professor, ok := reviews.FindProfessor(set, professorName)
	if !ok {
		msg := fmt.Sprintf("❌ No reviews found for professor '%s'.", professorName)
		return msg, memory.Updates{}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 Reviews for Professor %s:\n\n", professor)
	for _, course := range set.Courses(professor) {
		fmt.Fprintf(&b, "Course: %s\n", course)
		for i, review := range set[professor][course] {
			fmt.Fprintf(&b, "Review %d: %s\n\n", i+1, clipReview(review))
		}
	}

	u := memory.Updates{LastProfessor: aws.String(professor)}
	if history, changed := appendCapped(rec.ProfessorHistory, professor); changed {
		u.ProfessorHistory = history
	}
	return b.String(), u, nil
}

func clipReview(review string) string {
	runes := []rune(review)
	if len(runes) <= reviewLimit {
		return review
	}
	return string(runes[:reviewLimit-3]) + "..."
}

package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campusbot/course-ai-platform/internal/catalog"
	"github.com/campusbot/course-ai-platform/internal/memory"
	"github.com/campusbot/course-ai-platform/internal/reviews"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

// Intent names the bot definition routes here. CheckCourseAvailibility
// keeps the misspelling the deployed bot shipped with.
const (
	IntentCheckAvailability    = "CheckCourseAvailability"
	IntentCheckAvailabilityOld = "CheckCourseAvailibility"
	IntentCourseDetails        = "GetCourseDetails"
	IntentCourseDetailsVariant = "GetCourseDetailsIntent"
	IntentProfessorReviews     = "GetProfReviews"
	IntentCheckClashes         = "checkClashes"
)

// CatalogProvider supplies the current course catalog.
type CatalogProvider interface {
	Fetch(ctx context.Context) ([]catalog.Course, error)
}

// ReviewProvider supplies the professor review set.
type ReviewProvider interface {
	Fetch(ctx context.Context) (reviews.Set, error)
}

// UserMemory persists per-user conversation context between turns.
type UserMemory interface {
	Get(ctx context.Context, userID string) (memory.Record, error)
	Apply(ctx context.Context, userID string, u memory.Updates) error
}

// Engine answers fulfillment events. It degrades rather than fails when
// user memory is unavailable: a turn that cannot load or save history
// still gets a real answer.
type Engine struct {
	catalog     CatalogProvider
	reviews     ReviewProvider
	memory      UserMemory
	logger      *logging.Logger
	suggestions bool
}

// NewEngine wires the engine's collaborators.
func NewEngine(catalogSrc CatalogProvider, reviewSrc ReviewProvider, mem UserMemory, logger *logging.Logger) *Engine {
	if catalogSrc == nil {
		panic("fulfillment: catalog provider is required")
	}
	if reviewSrc == nil {
		panic("fulfillment: review provider is required")
	}
	if mem == nil {
		panic("fulfillment: user memory is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		catalog: catalogSrc,
		reviews: reviewSrc,
		memory:  mem,
		logger:  logger,
	}
}

// EnableSuggestions appends history-based follow-up hints to replies.
func (e *Engine) EnableSuggestions() {
	e.suggestions = true
}

// Handle answers one turn. It always returns a well-formed close
// response; handler errors become a Failed response carrying the error
// text.
func (e *Engine) Handle(ctx context.Context, event Event) (resp Response) {
	intentName := event.SessionState.Intent.Name
	userID := resolveUserID(event)
	log := e.logger.With("intent", intentName, "user_id", userID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("intent handler panicked", "panic", r)
			resp = failure(event, userID, fmt.Errorf("%v", r))
		}
	}()

	rec, err := e.memory.Get(ctx, userID)
	if err != nil {
		log.Warn("user memory unavailable, continuing without history", "error", err)
		rec = memory.Record{UserID: userID}
	}

	message, updates, err := e.dispatch(ctx, intentName, event, rec)
	if err != nil {
		log.Error("intent failed", "error", err)
		return failure(event, userID, err)
	}

	if e.suggestions {
		message += followUpHints(mergeUpdates(rec, updates))
	}

	if !updates.Empty() {
		if err := e.memory.Apply(ctx, userID, updates); err != nil {
			log.Error("persisting user memory failed", "error", err)
		}
	}

	return fulfilled(event, userID, message)
}

func (e *Engine) dispatch(ctx context.Context, intentName string, event Event, rec memory.Record) (string, memory.Updates, error) {
	switch intentName {
	case IntentCheckAvailability, IntentCheckAvailabilityOld:
		return e.handleAvailability(ctx, event, rec)
	case IntentCourseDetails, IntentCourseDetailsVariant:
		return e.handleCourseDetails(ctx, event, rec)
	case IntentProfessorReviews:
		return e.handleProfReviews(ctx, event, rec)
	case IntentCheckClashes:
		return e.handleClashes(ctx, event)
	default:
		return "Can you please be a bit more specific?", memory.Updates{}, nil
	}
}

// resolveUserID finds a stable identity for the turn, trying the session
// id, the legacy userId field, the runtime's request attribute and the
// session attributes before deriving a deterministic fallback from the
// utterance.
func resolveUserID(event Event) string {
	if event.SessionID != "" {
		return event.SessionID
	}
	if event.UserID != "" {
		return event.UserID
	}
	if id := event.RequestAttributes["x-amz-lex:user-id"]; id != "" {
		return id
	}
	attrs := event.SessionState.SessionAttributes
	if id := attrs["phoneNumber"]; id != "" {
		return id
	}
	if id := attrs["userId"]; id != "" {
		return id
	}
	seed := event.InputTranscript + event.InvocationSource
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(seed)).String()
}

func fulfilled(event Event, userID, message string) Response {
	return envelope(event, userID, "Fulfilled", message)
}

func failure(event Event, userID string, err error) Response {
	return envelope(event, userID, "Failed", "⚠️ Error: "+err.Error())
}

// envelope echoes the intent and its slots back, replaces the session
// attributes with the resolved user id, and closes the dialog.
func envelope(event Event, userID, state, message string) Response {
	return Response{
		SessionState: SessionState{
			DialogAction:      &DialogAction{Type: "Close"},
			SessionAttributes: map[string]string{"userId": userID},
			Intent: Intent{
				Name:  event.SessionState.Intent.Name,
				State: state,
				Slots: event.SessionState.Intent.Slots,
			},
		},
		Messages: []Message{{ContentType: "PlainText", Content: message}},
	}
}

// Package memory persists per-user conversation context (last course,
// last professor, lookup history) in DynamoDB so follow-up questions can
// resolve references like "who teaches it".
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// dynamoAPI is the slice of the DynamoDB client the store uses.
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// StringList tolerates the encodings older records used for list
// attributes: a native list, a string set, or a JSON array stored as a
// plain string. Unreadable values decode as empty rather than failing
// the whole record.
type StringList []string

func (l *StringList) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberL:
		out := make(StringList, 0, len(v.Value))
		for _, item := range v.Value {
			if s, ok := item.(*types.AttributeValueMemberS); ok {
				out = append(out, s.Value)
			}
		}
		*l = out
	case *types.AttributeValueMemberSS:
		*l = append(StringList(nil), v.Value...)
	case *types.AttributeValueMemberS:
		var out []string
		if err := json.Unmarshal([]byte(v.Value), &out); err != nil {
			*l = nil
			return nil
		}
		*l = out
	default:
		*l = nil
	}
	return nil
}

// Record is one user's stored context. A user with no history decodes to
// the zero record.
type Record struct {
	UserID           string     `dynamodbav:"userid"`
	LastCourseCode   string     `dynamodbav:"lastCourseCode"`
	LastProfessor    string     `dynamodbav:"lastProfessor"`
	LastInstructors  StringList `dynamodbav:"lastInstructors"`
	CoursesHistory   StringList `dynamodbav:"coursesHistory"`
	ProfessorHistory StringList `dynamodbav:"professorHistory"`
}

// Updates carries the attributes a handler wants to persist. Nil fields
// are left untouched.
type Updates struct {
	LastCourseCode   *string
	LastProfessor    *string
	LastInstructors  []string
	CoursesHistory   []string
	ProfessorHistory []string
}

// Empty reports whether the update would touch nothing.
func (u Updates) Empty() bool {
	return u.LastCourseCode == nil && u.LastProfessor == nil &&
		u.LastInstructors == nil && u.CoursesHistory == nil && u.ProfessorHistory == nil
}

type change struct {
	name  string
	value any
}

func (u Updates) changes() []change {
	var out []change
	if u.LastCourseCode != nil {
		out = append(out, change{"lastCourseCode", *u.LastCourseCode})
	}
	if u.LastProfessor != nil {
		out = append(out, change{"lastProfessor", *u.LastProfessor})
	}
	if u.LastInstructors != nil {
		out = append(out, change{"lastInstructors", u.LastInstructors})
	}
	if u.CoursesHistory != nil {
		out = append(out, change{"coursesHistory", u.CoursesHistory})
	}
	if u.ProfessorHistory != nil {
		out = append(out, change{"professorHistory", u.ProfessorHistory})
	}
	return out
}

// Store reads and writes user records in a single DynamoDB table keyed
// by userid.
type Store struct {
	api    dynamoAPI
	table  string
	tracer trace.Tracer
}

// NewStore builds a store on a real DynamoDB client.
func NewStore(client *dynamodb.Client, table string) *Store {
	return NewStoreWithAPI(client, table)
}

// NewStoreWithAPI is the injection point for tests.
func NewStoreWithAPI(api dynamoAPI, table string) *Store {
	if api == nil {
		panic("memory: dynamodb client is required")
	}
	if table == "" {
		panic("memory: table name is required")
	}
	return &Store{
		api:    api,
		table:  table,
		tracer: otel.Tracer("campus.internal.memory.store"),
	}
}

// Get loads a user's record. A user that was never written returns the
// zero record with only UserID set.
func (s *Store) Get(ctx context.Context, userID string) (Record, error) {
	ctx, span := s.tracer.Start(ctx, "memory.store.get")
	defer span.End()

	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       recordKey(userID),
	})
	if err != nil {
		span.RecordError(err)
		return Record{}, fmt.Errorf("memory: get user %s: %w", userID, err)
	}
	if len(out.Item) == 0 {
		return Record{UserID: userID}, nil
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		span.RecordError(err)
		return Record{}, fmt.Errorf("memory: decode user %s: %w", userID, err)
	}
	if rec.UserID == "" {
		rec.UserID = userID
	}
	return rec, nil
}

// Apply upserts the changed attributes in one UpdateItem call. DynamoDB
// creates the item when the user is new, so no existence probe is
// needed. An empty update is a no-op.
func (s *Store) Apply(ctx context.Context, userID string, u Updates) error {
	changes := u.changes()
	if len(changes) == 0 {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "memory.store.apply")
	defer span.End()

	names := make(map[string]string, len(changes))
	values := make(map[string]types.AttributeValue, len(changes))
	terms := make([]string, 0, len(changes))
	for _, c := range changes {
		av, err := attributevalue.Marshal(c.value)
		if err != nil {
			return fmt.Errorf("memory: encode %s: %w", c.name, err)
		}
		names["#"+c.name] = c.name
		values[":"+c.name] = av
		terms = append(terms, fmt.Sprintf("#%s = :%s", c.name, c.name))
	}

	_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       recordKey(userID),
		UpdateExpression:          aws.String("SET " + strings.Join(terms, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("memory: update user %s: %w", userID, err)
	}
	return nil
}

func recordKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userid": &types.AttributeValueMemberS{Value: userID},
	}
}

var _ attributevalue.Unmarshaler = (*StringList)(nil)

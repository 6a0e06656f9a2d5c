package chat

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2"
)

// lexAPI is the slice of the Lex V2 runtime client used here.
type lexAPI interface {
	RecognizeText(ctx context.Context, params *lexruntimev2.RecognizeTextInput, optFns ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error)
}

// LexClient adapts the Lex V2 runtime to the BotClient interface.
type LexClient struct {
	api lexAPI
}

// NewLexClient builds a client from an AWS config.
func NewLexClient(awsCfg aws.Config) *LexClient {
	return &LexClient{api: lexruntimev2.NewFromConfig(awsCfg)}
}

// NewLexClientWithAPI allows injecting a fake runtime in tests.
func NewLexClientWithAPI(api lexAPI) *LexClient {
	if api == nil {
		panic("chat: lex api is required")
	}
	return &LexClient{api: api}
}

// Converse sends one utterance through RecognizeText and collects the
// reply segments in service order. Segments without plain text content
// (cards, custom payloads) are skipped.
func (c *LexClient) Converse(ctx context.Context, req ExchangeRequest) (*ExchangeResult, error) {
	out, err := c.api.RecognizeText(ctx, &lexruntimev2.RecognizeTextInput{
		BotId:      aws.String(req.BotID),
		BotAliasId: aws.String(req.BotAliasID),
		LocaleId:   aws.String(req.LocaleID),
		SessionId:  aws.String(req.SessionID),
		Text:       aws.String(req.Text),
	})
	if err != nil {
		return nil, fmt.Errorf("chat: recognize text: %w", err)
	}

	result := &ExchangeResult{SessionID: req.SessionID}
	if out.SessionId != nil && *out.SessionId != "" {
		result.SessionID = *out.SessionId
	}
	for _, msg := range out.Messages {
		if msg.Content == nil || *msg.Content == "" {
			continue
		}
		result.Messages = append(result.Messages, *msg.Content)
	}
	return result, nil
}

var _ BotClient = (*LexClient)(nil)

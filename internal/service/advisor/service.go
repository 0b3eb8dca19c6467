// Package advisor wraps the chat model behind the advice-generation
// contract: callers always get text back, never an error.
package advisor

import (
	"context"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/kairoslabs/kairos/internal/model/advisory"
	"github.com/kairoslabs/kairos/pkg/metrics"
)

// Fallback is the fixed, user-safe sentence returned whenever the
// underlying model call fails. Callers may compare against it to detect
// degraded responses.
const Fallback = "I'm sorry, I cannot provide advice at this time due to technical difficulties."

const historyLimit = 20

// Request describes one generation call.
type Request struct {
	Prompt       string
	SystemPrompt string
	History      []advisory.Turn
	MaxTokens    int
	Temperature  float32
}

// Service generates advisory text with a persona system prompt and the
// running dialogue as context.
type Service struct {
	chatModel model.ChatModel
}

// NewService wraps the supplied chat model.
func NewService(chatModel model.ChatModel) *Service {
	return &Service{chatModel: chatModel}
}

// Generate runs one model call. On any failure it logs the cause and
// returns Fallback instead of propagating an error.
func (s *Service) Generate(ctx context.Context, req Request) string {
	messages := make([]*schema.Message, 0, len(req.History)+2)
	messages = append(messages, schema.SystemMessage(req.SystemPrompt))
	messages = append(messages, historyMessages(req.History)...)
	messages = append(messages, schema.UserMessage(req.Prompt))

	opts := make([]model.Option, 0, 2)
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, model.WithTemperature(req.Temperature))
	}

	response, err := s.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		log.Printf("[advisor] model call failed: %v", err)
		metrics.GeneratorFallbacks.Inc()
		return Fallback
	}

	text := strings.TrimSpace(response.Content)
	if text == "" {
		log.Printf("[advisor] model returned empty content")
		metrics.GeneratorFallbacks.Inc()
		return Fallback
	}

	log.Printf("[advisor] generated response, length=%d", len(text))
	return text
}

func historyMessages(turns []advisory.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	startIdx := 0
	if len(turns) > historyLimit {
		startIdx = len(turns) - historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		switch turn.Role {
		case advisory.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case advisory.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}

	return history
}

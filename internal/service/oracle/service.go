// Package oracle provides the Pythia premium collaborator. Unlike the base
// advisor its failures are visible to the caller, which decides whether the
// consultation degrades or aborts.
package oracle

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Service runs a single-shot oracle chain with the Pythia persona.
type Service struct {
	systemPrompt string
	chain        compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the oracle chain. A nil chat model yields an
// unavailable (but safe to call) service.
func NewService(ctx context.Context, chatModel model.ChatModel, systemPrompt string) (*Service, error) {
	svc := &Service{systemPrompt: systemPrompt}
	if chatModel == nil {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile oracle chain: %w", err)
	}

	svc.chain = runnable
	return svc, nil
}

// Available reports whether oracle visions can be produced at all.
func (s *Service) Available() bool {
	return s != nil && s.chain != nil
}

// Vision consults the oracle about the seeker's question.
func (s *Service) Vision(ctx context.Context, query string) (string, error) {
	if !s.Available() {
		return "", fmt.Errorf("oracle unavailable")
	}

	input := map[string]any{
		"system": s.systemPrompt,
		"query": fmt.Sprintf("Provide mystical, future-oriented wisdom about this seeker's purpose question: %q. "+
			"Your vision should offer unique insight beyond conventional advice, revealing deeper patterns and potential futures.", query),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run oracle chain: %w", err)
	}

	vision := strings.TrimSpace(response.Content)
	if vision == "" {
		return "", fmt.Errorf("oracle returned empty vision")
	}

	log.Printf("[oracle] vision produced, length=%d", len(vision))
	return vision, nil
}

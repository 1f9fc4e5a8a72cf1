// Package narrator wraps the external narrative generator behind a
// prompt-in, text-out interface.
package narrator

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/zhouzirui/storyforge/internal/config"
)

// Service generates narration through a compiled prompt + chat model
// chain. The call blocks until the model answers; callers that need a
// deadline wrap the context themselves.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a narration service from the model configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile narration chain: %w", err)
	}

	return &Service{chatModel: chatModel, chain: runnable}, nil
}

// Generate produces narrative prose for a fully composed prompt.
func (s *Service) Generate(ctx context.Context, promptText string) (string, error) {
	requestID := uuid.NewString()

	response, err := s.chain.Invoke(ctx, map[string]any{"prompt": promptText})
	if err != nil {
		return "", fmt.Errorf("failed to run narration chain: %w", err)
	}

	log.Printf("[narrator] generated response request=%s prompt_len=%d response_len=%d",
		requestID, len(promptText), len(response.Content))
	return response.Content, nil
}

package specialist

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	llmx "github.com/tanpawarit/motel-concierge/agent/llm"
	promptx "github.com/tanpawarit/motel-concierge/agent/prompt"
)

// NewFromConfig builds the concierge on the configured OpenAI-compatible model.
func NewFromConfig(ctx context.Context, cfg llmx.Config, tools contractx.ToolGateway, opts Options) (*Concierge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	modelCfg := cfg.OpenRouter()
	chatModel, err := modelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create concierge model: %v", contractx.ErrModelInvoke, err)
	}

	prompts := promptx.LoadPromptSet()
	return New(ctx, chatModel, tools, prompts.Concierge, opts)
}

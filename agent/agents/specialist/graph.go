package specialist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const historyKey = "history"

// compilePromptGraph renders the system prompt, prior turns, and the new user
// message into the opening message list of a turn.
func compilePromptGraph(
	ctx context.Context,
	systemPrompt string,
) (compose.Runnable[map[string]any, []*schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder(historyKey, true),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, []*schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add prompt node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add prompt edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", compose.END); err != nil {
		return nil, fmt.Errorf("add prompt edge prompt->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("specialist.prompt_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile specialist prompt graph: %w", err)
	}
	return runner, nil
}

// compileModelGraph runs one model round over the conversation so far.
func compileModelGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[[]*schema.Message, *schema.Message], error) {
	graph := compose.NewGraph[[]*schema.Message, *schema.Message]()
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "model"); err != nil {
		return nil, fmt.Errorf("add model edge start->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add model edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("specialist.model_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile specialist model graph: %w", err)
	}
	return runner, nil
}

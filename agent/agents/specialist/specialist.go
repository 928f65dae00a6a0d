package specialist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	statex "github.com/tanpawarit/motel-concierge/agent/state"
	toolx "github.com/tanpawarit/motel-concierge/agent/tool"
	"github.com/tanpawarit/motel-concierge/pkg/dates"
)

const defaultMaxToolRounds = 4

type Options struct {
	// MaxToolRounds bounds model round trips that end in tool calls.
	MaxToolRounds int
}

// Concierge lets the model call catalog tools until it produces a reply.
type Concierge struct {
	promptRunner compose.Runnable[map[string]any, []*schema.Message]
	modelRunner  compose.Runnable[[]*schema.Message, *schema.Message]
	tools        contractx.ToolGateway
	allowedTools map[string]struct{}
	maxRounds    int
}

var _ contractx.Specialist = (*Concierge)(nil)

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	tools contractx.ToolGateway,
	systemPrompt string,
	opts Options,
) (*Concierge, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if tools == nil {
		return nil, fmt.Errorf("%w: tool gateway is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, contractx.ErrPromptMissing
	}

	infos := toolx.Infos()
	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}
	promptRunner, err := compilePromptGraph(ctx, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	modelRunner, err := compileModelGraph(ctx, toolModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	allowed := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		allowed[info.Name] = struct{}{}
	}

	maxRounds := opts.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}

	return &Concierge{
		promptRunner: promptRunner,
		modelRunner:  modelRunner,
		tools:        tools,
		allowedTools: allowed,
		maxRounds:    maxRounds,
	}, nil
}

func (c *Concierge) Run(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: user message is empty", contractx.ErrValidation)
	}
	logger := zerolog.Ctx(ctx)

	messages, err := c.promptRunner.Invoke(ctx, promptVars(req))
	if err != nil {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: render prompt: %v", contractx.ErrModelInvoke, err)
	}

	var results []contractx.ToolResult
	for round := 0; ; round++ {
		msg, err := c.modelRunner.Invoke(ctx, messages)
		if err != nil {
			return contractx.SpecialistResponse{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		if msg == nil {
			return contractx.SpecialistResponse{}, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
		}

		if len(msg.ToolCalls) == 0 {
			reply := cleanReply(msg.Content)
			if reply == "" {
				return contractx.SpecialistResponse{}, fmt.Errorf("%w: model reply is empty", contractx.ErrSchemaViolation)
			}
			return contractx.SpecialistResponse{Message: reply, ToolResults: results}, nil
		}

		if round >= c.maxRounds {
			logger.Warn().Int("rounds", round).Msg("tool rounds exhausted, replying with last tool results")
			return fallbackReply(results)
		}

		messages = append(messages, msg)
		roundResults, err := c.runTools(ctx, req.SessionID, msg.ToolCalls)
		if err != nil {
			return contractx.SpecialistResponse{}, err
		}
		for _, res := range roundResults {
			messages = append(messages, schema.ToolMessage(res.Text, res.CallID, schema.WithToolName(res.Tool)))
		}
		results = append(results, roundResults...)
	}
}

// runTools answers every call in order. Calls the gateway cannot run get a
// result sentence too, since the model expects one tool message per call.
func (c *Concierge) runTools(ctx context.Context, sessionID string, calls []schema.ToolCall) ([]contractx.ToolResult, error) {
	out := make([]contractx.ToolResult, len(calls))
	var (
		reqs []contractx.ToolRequest
		idx  []int
	)
	for i, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if _, ok := c.allowedTools[name]; !ok {
			out[i] = contractx.ToolResult{
				Tool:    name,
				CallID:  call.ID,
				Text:    fmt.Sprintf("tool=%s is unavailable", name),
				Outcome: contractx.OutcomeRejected,
			}
			continue
		}
		args, err := toolx.ParseArgs(call.Function.Arguments)
		if err != nil {
			out[i] = contractx.ToolResult{
				Tool:    name,
				CallID:  call.ID,
				Text:    fmt.Sprintf("The arguments for %s could not be read. Please call it again with valid JSON.", name),
				Outcome: contractx.OutcomeRejected,
			}
			continue
		}
		reqs = append(reqs, contractx.ToolRequest{Tool: name, CallID: call.ID, Args: args})
		idx = append(idx, i)
	}

	if len(reqs) > 0 {
		results, err := c.tools.Execute(ctx, sessionID, reqs)
		if err != nil {
			return nil, fmt.Errorf("execute tools: %w", err)
		}
		if len(results) != len(reqs) {
			return nil, fmt.Errorf("%w: %d tool results for %d calls", contractx.ErrSchemaViolation, len(results), len(reqs))
		}
		for j, res := range results {
			out[idx[j]] = res
		}
	}
	return out, nil
}

func promptVars(req contractx.SpecialistRequest) map[string]any {
	today := "unknown"
	if !req.Now.IsZero() {
		today = req.Now.Weekday().String() + " " + dates.Format(req.Now)
	}

	var history []*schema.Message
	slots := statex.Slots{}
	if req.Session != nil {
		slots = req.Session.Slots
		for _, turn := range req.Session.History {
			switch turn.Role {
			case statex.RoleUser:
				history = append(history, schema.UserMessage(turn.Content))
			case statex.RoleAssistant:
				history = append(history, schema.AssistantMessage(turn.Content, nil))
			}
		}
	}

	return map[string]any{
		"today":    today,
		"context":  describeSlots(slots),
		historyKey: history,
		"input":    strings.TrimSpace(req.UserMessage),
	}
}

func describeSlots(s statex.Slots) string {
	lines := []string{}
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, "- "+label+": "+v)
		}
	}
	add("guest_name", s.GuestName)
	add("room_number", s.RoomNumber)
	add("check_in_date", s.CheckInDate)
	add("check_out_date", s.CheckOutDate)
	add("last_action", s.LastAction)
	if len(lines) == 0 {
		return "- nothing yet"
	}
	return strings.Join(lines, "\n")
}

// cleanReply drops markdown emphasis the model adds despite the prompt.
func cleanReply(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "*", ""))
}

func fallbackReply(results []contractx.ToolResult) (contractx.SpecialistResponse, error) {
	if len(results) == 0 {
		return contractx.SpecialistResponse{}, contractx.ErrToolRounds
	}
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	return contractx.SpecialistResponse{Message: strings.Join(texts, "\n"), ToolResults: results}, nil
}

// IsModelError reports whether err came from the model rather than the request.
func IsModelError(err error) bool {
	return errors.Is(err, contractx.ErrModelInvoke) || errors.Is(err, contractx.ErrSchemaViolation)
}

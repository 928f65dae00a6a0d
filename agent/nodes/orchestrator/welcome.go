package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	toolx "github.com/tanpawarit/motel-concierge/agent/tool"
)

// IsGreeting matches the bare "hi" that opens most conversations.
func IsGreeting(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "hi")
}

func WelcomeText() string {
	return fmt.Sprintf("Hello! I'm here to help you manage the motel. I can %s. "+
		"Just tell me what you need, like 'Check availability for next week' or 'List room types.' How can I help you today?",
		strings.Join(toolx.Capabilities, ", "))
}

// Welcome answers a greeting without calling the model.
func Welcome(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Message = WelcomeText()
	return in, nil
}

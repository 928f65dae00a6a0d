package contract

import "context"

// Agent answers one chat turn. The HTTP layer depends only on this.
type Agent interface {
	Ask(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

type Specialist interface {
	Run(ctx context.Context, req SpecialistRequest) (SpecialistResponse, error)
}

// ToolGateway executes tool calls for one conversation thread. Failures are
// reported inside each ToolResult; the error return is reserved for a nil or
// misconfigured gateway.
type ToolGateway interface {
	Execute(ctx context.Context, sessionID string, reqs []ToolRequest) ([]ToolResult, error)
}

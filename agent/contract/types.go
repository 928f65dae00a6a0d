package contract

import (
	"time"

	statex "github.com/tanpawarit/motel-concierge/agent/state"
)

type ChatRequest struct {
	SessionID string         `json:"session_id"`
	Message   string         `json:"message"`
	User      map[string]any `json:"user,omitempty"`
}

type ChatResponse struct {
	Text     string  `json:"text"`
	VideoURL *string `json:"video_url"`
}

type SpecialistRequest struct {
	SessionID   string               `json:"session_id"`
	UserMessage string               `json:"user_message"`
	Session     *statex.SessionState `json:"session"`
	Now         time.Time            `json:"now"`
}

type SpecialistResponse struct {
	Message     string       `json:"message"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

type ToolRequest struct {
	Tool   string         `json:"tool"`
	CallID string         `json:"call_id,omitempty"`
	Args   map[string]any `json:"args,omitempty"`
}

// Outcome classifies a tool result for metrics and logs. The guest only ever
// sees ToolResult.Text.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeMissingParameter Outcome = "missing_parameter"
	OutcomeRejected         Outcome = "rejected"
	OutcomeError            Outcome = "error"
)

type ToolResult struct {
	Tool    string  `json:"tool"`
	CallID  string  `json:"call_id,omitempty"`
	Text    string  `json:"text"`
	Outcome Outcome `json:"outcome"`
}

package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	statex "github.com/tanpawarit/motel-concierge/agent/state"
)

// ValidateAndSaveState appends the turn to the thread. The session is loaded
// again first so slots written by tools during the turn survive.
func ValidateAndSaveState(ctx context.Context, in *GraphState, store statex.Store, historyLimit int) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	latest, err := loadOrCreateState(ctx, store, in.SessionID, in.Now)
	if err != nil {
		return nil, err
	}
	latest.AppendTurn(statex.RoleUser, in.Text, in.Now, historyLimit)
	latest.AppendTurn(statex.RoleAssistant, in.Message, in.Now, historyLimit)
	latest.Touch(in.Now)

	if err := latest.Validate(); err != nil {
		return nil, fmt.Errorf("state validation failed: %w", err)
	}
	if err := store.Save(ctx, latest); err != nil {
		return nil, fmt.Errorf("save session %s: %w", in.SessionID, err)
	}

	in.Session = latest
	return in, nil
}

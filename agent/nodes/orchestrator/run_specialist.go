package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
)

func RunSpecialist(ctx context.Context, in *GraphState, specialist contractx.Specialist) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	resp, err := specialist.Run(ctx, contractx.SpecialistRequest{
		SessionID:   in.SessionID,
		UserMessage: in.Text,
		Session:     in.Session,
		Now:         in.Now,
	})
	if err != nil {
		return nil, err
	}

	in.Message = strings.TrimSpace(resp.Message)
	return in, nil
}

package codex

import (
	"encoding/json"

	"github.com/shayne/happy/internal/codexver"
)

// ElicitationAction is the top-level verb of an elicitation response.
type ElicitationAction string

const (
	ActionAccept  ElicitationAction = "accept"
	ActionDecline ElicitationAction = "decline"
	ActionCancel  ElicitationAction = "cancel"
)

// ElicitationResponse is the wire shape returned to the codex subprocess
// when an approval request resolves. Content is present only in the "both"
// style and is always the empty object; callers needing richer content
// populate it outside this codec.
type ElicitationResponse struct {
	Action   ElicitationAction `json:"action"`
	Decision ReviewDecision    `json:"decision"`
	Content  json.RawMessage   `json:"content,omitempty"`
}

// EncodeResponse builds the response in the negotiated style.
func EncodeResponse(style codexver.ResponseStyle, action ElicitationAction, decision ReviewDecision) ElicitationResponse {
	resp := ElicitationResponse{Action: action, Decision: decision}
	if style == codexver.StyleBoth {
		resp.Content = json.RawMessage(`{}`)
	}
	return resp
}

// DecisionToAction maps a review decision onto the response verb: any
// approval accepts, an abort cancels, everything else declines.
func DecisionToAction(decision ReviewDecision) ElicitationAction {
	switch {
	case decision.IsApproval():
		return ActionAccept
	case decision.Kind == DecisionAbort:
		return ActionCancel
	default:
		return ActionDecline
	}
}

// ResultToDecision maps an internal decision to its wire form. The
// execpolicy amendment variant is only emitted when it actually carries a
// non-empty command; otherwise it degrades to a plain approval.
func ResultToDecision(decision ReviewDecision) ReviewDecision {
	if decision.Kind != DecisionExecPolicyAmendment {
		return decision
	}
	if decision.Amendment != nil && len(decision.Amendment.Command) > 0 {
		return decision
	}
	return Approved()
}

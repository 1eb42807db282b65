// Package codex contains the pure protocol pieces shared with the codex
// subprocess: review decisions, the elicitation response codec, and the
// runner invocation resolver.
package codex

import (
	"encoding/json"
	"fmt"
)

// DecisionKind identifies a review decision variant.
type DecisionKind string

const (
	DecisionApproved           DecisionKind = "approved"
	DecisionApprovedForSession DecisionKind = "approved_for_session"
	DecisionDenied             DecisionKind = "denied"
	DecisionAbort              DecisionKind = "abort"
	// DecisionExecPolicyAmendment approves and proposes a permanent
	// allowed-command amendment. Only valid with a non-empty command.
	DecisionExecPolicyAmendment DecisionKind = "approved_execpolicy_amendment"
)

// ExecPolicyAmendment is a proposed change to the allowed-command policy,
// carried as the exact argument vector to allow.
type ExecPolicyAmendment struct {
	Command []string `json:"command"`
}

// ReviewDecision is the operator's decision on an approval request.
// Simple kinds serialize as a bare string; the execpolicy amendment kind
// serializes as a single-key object carrying the amendment, matching the
// externally-tagged enum encoding the codex CLI uses.
type ReviewDecision struct {
	Kind      DecisionKind
	Amendment *ExecPolicyAmendment
}

// Approved constructs a plain approval.
func Approved() ReviewDecision { return ReviewDecision{Kind: DecisionApproved} }

// ApprovedForSession constructs a session-scoped approval.
func ApprovedForSession() ReviewDecision { return ReviewDecision{Kind: DecisionApprovedForSession} }

// Denied constructs a denial.
func Denied() ReviewDecision { return ReviewDecision{Kind: DecisionDenied} }

// Abort constructs an abort decision.
func Abort() ReviewDecision { return ReviewDecision{Kind: DecisionAbort} }

// ApprovedWithAmendment constructs an approval carrying an execpolicy
// amendment command.
func ApprovedWithAmendment(command []string) ReviewDecision {
	return ReviewDecision{
		Kind:      DecisionExecPolicyAmendment,
		Amendment: &ExecPolicyAmendment{Command: command},
	}
}

// IsApproval reports whether the decision lets the action proceed.
func (d ReviewDecision) IsApproval() bool {
	switch d.Kind {
	case DecisionApproved, DecisionApprovedForSession, DecisionExecPolicyAmendment:
		return true
	}
	return false
}

// MarshalJSON implements the externally-tagged wire encoding.
func (d ReviewDecision) MarshalJSON() ([]byte, error) {
	if d.Kind == DecisionExecPolicyAmendment {
		return json.Marshal(map[string]*ExecPolicyAmendment{
			string(DecisionExecPolicyAmendment): d.Amendment,
		})
	}
	return json.Marshal(string(d.Kind))
}

// UnmarshalJSON accepts both the bare-string and the single-key object form.
func (d *ReviewDecision) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Kind = DecisionKind(s)
		d.Amendment = nil
		return nil
	}

	var obj map[string]*ExecPolicyAmendment
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid review decision: %s", data)
	}
	if amendment, ok := obj[string(DecisionExecPolicyAmendment)]; ok {
		d.Kind = DecisionExecPolicyAmendment
		d.Amendment = amendment
		return nil
	}
	return fmt.Errorf("unknown review decision variant: %s", data)
}

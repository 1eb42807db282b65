package codex

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shayne/happy/internal/codexver"
)

func TestEncodeResponse_DecisionStyle(t *testing.T) {
	resp := EncodeResponse(codexver.StyleDecision, ActionAccept, Approved())

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"accept","decision":"approved"}`, string(data))
}

func TestEncodeResponse_BothStyle(t *testing.T) {
	resp := EncodeResponse(codexver.StyleBoth, ActionDecline, Denied())

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"decline","decision":"denied","content":{}}`, string(data))
}

func TestEncodeResponse_AmendmentOnWire(t *testing.T) {
	decision := ResultToDecision(ApprovedWithAmendment([]string{"yarn", "dev"}))
	resp := EncodeResponse(codexver.StyleBoth, DecisionToAction(decision), decision)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"action": "accept",
		"decision": {"approved_execpolicy_amendment": {"command": ["yarn", "dev"]}},
		"content": {}
	}`, string(data))
}

func TestDecisionToAction(t *testing.T) {
	tests := []struct {
		name     string
		decision ReviewDecision
		expected ElicitationAction
	}{
		{"approved", Approved(), ActionAccept},
		{"approved for session", ApprovedForSession(), ActionAccept},
		{"amendment", ApprovedWithAmendment([]string{"make"}), ActionAccept},
		{"abort", Abort(), ActionCancel},
		{"denied", Denied(), ActionDecline},
		{"unknown kind declines", ReviewDecision{Kind: "mystery"}, ActionDecline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecisionToAction(tt.decision))
		})
	}
}

func TestResultToDecision_Degrade(t *testing.T) {
	// Amendment without a command degrades to a plain approval.
	assert.Equal(t, Approved(), ResultToDecision(ReviewDecision{Kind: DecisionExecPolicyAmendment}))
	assert.Equal(t, Approved(), ResultToDecision(ApprovedWithAmendment(nil)))
	assert.Equal(t, Approved(), ResultToDecision(ApprovedWithAmendment([]string{})))

	// A real amendment passes through.
	withCmd := ApprovedWithAmendment([]string{"yarn", "dev"})
	assert.Equal(t, withCmd, ResultToDecision(withCmd))

	// Other decisions are untouched.
	assert.Equal(t, Denied(), ResultToDecision(Denied()))
	assert.Equal(t, Abort(), ResultToDecision(Abort()))
}

func TestReviewDecision_JSONRoundTrip(t *testing.T) {
	simple := ApprovedForSession()
	data, err := json.Marshal(simple)
	require.NoError(t, err)
	assert.JSONEq(t, `"approved_for_session"`, string(data))

	var back ReviewDecision
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, simple, back)

	amendment := ApprovedWithAmendment([]string{"git", "push"})
	data, err = json.Marshal(amendment)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, amendment, back)
}

func TestReviewDecision_UnmarshalRejectsUnknownObject(t *testing.T) {
	var d ReviewDecision
	err := json.Unmarshal([]byte(`{"something_else":{}}`), &d)
	assert.Error(t, err)
}

// Package bridge correlates approval requests from the codex subprocess
// with asynchronous decisions arriving from the remote operator. It owns
// the pending-request table, the auto-approval policy, per-request advisory
// timers, and the reset/cancellation protocol.
package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/shayne/happy/internal/agentstate"
	"github.com/shayne/happy/internal/codex"
	"github.com/shayne/happy/internal/event"
	"github.com/shayne/happy/internal/logging"
)

// DefaultApprovalTimeout is how long a request may sit unanswered before
// an advisory timeout is surfaced. The request itself stays pending.
const DefaultApprovalTimeout = 30 * time.Second

// PermissionMode drives the auto-approval policy.
type PermissionMode string

const (
	// ModeDefault never auto-approves.
	ModeDefault PermissionMode = "default"
	// ModeReadOnly auto-approves everything except write-intent tools.
	ModeReadOnly PermissionMode = "read-only"
	// ModeYolo auto-approves everything, session-scoped.
	ModeYolo PermissionMode = "yolo"
)

// ParseMode maps a config string onto a PermissionMode, defaulting to
// ModeDefault for anything unrecognized.
func ParseMode(s string) PermissionMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModeReadOnly):
		return ModeReadOnly
	case string(ModeYolo):
		return ModeYolo
	default:
		return ModeDefault
	}
}

// Bookkeeping requests that must never block on a human, matched
// case-insensitively as substrings.
var (
	autoApproveToolSubstrings = []string{"title", "summar"}
	autoApproveIDSubstrings   = []string{"bookkeeping"}
)

// writeIntentSubstrings marks tools that mutate the workspace; in
// read-only mode these still require a decision.
var writeIntentSubstrings = []string{"write", "edit", "create", "delete", "patch", "fs-edit"}

// DecisionMessage is an inbound operator decision from the session channel.
// The id may arrive as a JSON string or number; both forms address the same
// pending request.
type DecisionMessage struct {
	ID                  any                        `json:"id"`
	Approved            bool                       `json:"approved"`
	Decision            codex.DecisionKind         `json:"decision,omitempty"`
	ExecPolicyAmendment *codex.ExecPolicyAmendment `json:"execPolicyAmendment,omitempty"`
}

type pendingRequest struct {
	id        string
	tool      string
	input     any
	createdAt time.Time
	timer     *time.Timer
	deliver   func(codex.ReviewDecision, error)
}

// Bridge owns the correlation table of outstanding approval requests.
// The table and the resetting flag are its only mutable state; both are
// guarded by mu so re-entrant calls stay safe.
type Bridge struct {
	mu        sync.Mutex
	mode      PermissionMode
	pending   map[string]*pendingRequest
	resetting bool

	state   *agentstate.Store
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a Bridge recording request lifecycles into state.
func New(state *agentstate.Store) *Bridge {
	return &Bridge{
		mode:    ModeDefault,
		pending: make(map[string]*pendingRequest),
		state:   state,
		timeout: DefaultApprovalTimeout,
		log:     logging.Component("bridge"),
	}
}

// SetApprovalTimeout overrides the advisory timeout (tests, config).
func (b *Bridge) SetApprovalTimeout(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeout = d
}

// TransitionMode switches the auto-approval mode and returns the previous
// one. Mode changes only affect requests registered afterwards.
func (b *Bridge) TransitionMode(next PermissionMode) PermissionMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.mode
	b.mode = next
	if prev != next {
		b.log.Info().Str("from", string(prev)).Str("to", string(next)).Msg("permission mode changed")
	}
	return prev
}

// Mode returns the current auto-approval mode.
func (b *Bridge) Mode() PermissionMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// PendingCount reports how many requests are awaiting a decision.
func (b *Bridge) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

type outcome struct {
	decision codex.ReviewDecision
	err      error
}

// RequestApproval asks for a decision on a tool action and waits for it.
// The wait is cooperative: the calling goroutine parks until an operator
// decision, a reset, or ctx cancellation resolves the request.
func (b *Bridge) RequestApproval(ctx context.Context, id any, tool string, input any) (codex.ReviewDecision, error) {
	ch := make(chan outcome, 1)
	key, decision, auto := b.register(id, tool, input, func(d codex.ReviewDecision, err error) {
		ch <- outcome{decision: d, err: err}
	})
	if auto {
		return decision, nil
	}

	select {
	case out := <-ch:
		return out.decision, out.err
	case <-ctx.Done():
		b.abandon(key, "context canceled")
		return codex.ReviewDecision{}, ctx.Err()
	}
}

// RequestApprovalAsync registers a request and invokes done exactly once
// when it resolves. Auto-approved requests invoke done synchronously.
// A done callback that panics during Reset is recovered and logged.
func (b *Bridge) RequestApprovalAsync(id any, tool string, input any, done func(codex.ReviewDecision, error)) {
	if decision, auto := b.maybeAutoApprove(NormalizeID(id), tool); auto {
		done(decision, nil)
		return
	}
	b.register(id, tool, input, done)
}

// register normalizes the id, applies the auto-approval policy, and on the
// non-auto path inserts the pending entry, records it in agent state,
// surfaces it on the session channel, and arms the advisory timer.
func (b *Bridge) register(id any, tool string, input any, deliver func(codex.ReviewDecision, error)) (string, codex.ReviewDecision, bool) {
	key := NormalizeID(id)
	if key == "" {
		key = ulid.Make().String()
	}

	if decision, auto := b.maybeAutoApprove(key, tool); auto {
		return key, decision, true
	}

	now := time.Now()
	req := &pendingRequest{
		id:        key,
		tool:      tool,
		input:     input,
		createdAt: now,
		deliver:   deliver,
	}

	b.mu.Lock()
	b.pending[key] = req
	req.timer = time.AfterFunc(b.timeout, func() { b.onAdvisoryTimeout(key) })
	b.mu.Unlock()

	b.state.Update(func(st *agentstate.State) {
		st.Requests[key] = agentstate.RequestRecord{
			Tool:      tool,
			Input:     input,
			CreatedAt: now.UnixMilli(),
		}
	})

	event.Publish(event.Event{
		Type: event.PermissionRequested,
		Data: event.PermissionRequestedData{
			ID:        key,
			Tool:      tool,
			Input:     input,
			CreatedAt: now.UnixMilli(),
		},
	})

	b.log.Debug().Str("id", key).Str("tool", tool).Msg("approval requested")
	return key, codex.ReviewDecision{}, false
}

// maybeAutoApprove classifies a request against the bypass vocabulary and
// the current mode. Pure and synchronous: it cannot fail, and on a hit it
// records the completed entry without ever touching the pending table, the
// timers, or the session channel.
func (b *Bridge) maybeAutoApprove(key, tool string) (codex.ReviewDecision, bool) {
	loweredTool := strings.ToLower(tool)
	loweredID := strings.ToLower(key)

	bypass := containsAny(loweredTool, autoApproveToolSubstrings) ||
		containsAny(loweredID, autoApproveIDSubstrings)

	var decision codex.ReviewDecision
	switch {
	case bypass:
		decision = codex.Approved()
	case b.Mode() == ModeYolo:
		decision = codex.ApprovedForSession()
	case b.Mode() == ModeReadOnly && !containsAny(loweredTool, writeIntentSubstrings):
		decision = codex.Approved()
	default:
		return codex.ReviewDecision{}, false
	}

	now := time.Now().UnixMilli()
	d := decision
	b.state.Update(func(st *agentstate.State) {
		st.CompletedRequests[key] = agentstate.CompletedRequest{
			Tool:        tool,
			CreatedAt:   now,
			CompletedAt: now,
			Status:      agentstate.StatusApproved,
			Decision:    &d,
		}
	})

	b.log.Debug().Str("id", key).Str("tool", tool).Str("mode", string(b.Mode())).Msg("auto-approved")
	return decision, true
}

// HandleDecision resolves a pending request from an inbound operator
// decision. A message for an unknown or already-resolved id is silently
// ignored; duplicate and late deliveries are expected.
func (b *Bridge) HandleDecision(msg DecisionMessage) {
	key := NormalizeID(msg.ID)

	b.mu.Lock()
	req, ok := b.pending[key]
	if ok {
		delete(b.pending, key)
	}
	b.mu.Unlock()

	if !ok {
		b.log.Debug().Str("id", key).Msg("decision for unknown or resolved request")
		return
	}

	req.timer.Stop()
	decision := resolveDecision(msg)

	status := agentstate.StatusDenied
	if msg.Approved {
		status = agentstate.StatusApproved
	}

	completedAt := time.Now().UnixMilli()
	d := decision
	b.state.Update(func(st *agentstate.State) {
		rec := st.Requests[key]
		delete(st.Requests, key)
		st.CompletedRequests[key] = agentstate.CompletedRequest{
			Tool:        rec.Tool,
			Input:       rec.Input,
			CreatedAt:   rec.CreatedAt,
			CompletedAt: completedAt,
			Status:      status,
			Decision:    &d,
		}
	})

	event.Publish(event.Event{
		Type: event.PermissionResolved,
		Data: event.PermissionResolvedData{ID: key, Status: string(status)},
	})

	b.safeDeliver(req, decision, nil)
}

// resolveDecision computes the final decision from an inbound message.
// The amendment variant requires an explicit amendment decision AND a
// non-empty command; a bare approval with a session-scope tag widens to
// the session, and a non-approval without an explicit denial is an abort.
func resolveDecision(msg DecisionMessage) codex.ReviewDecision {
	if msg.Approved {
		if msg.Decision == codex.DecisionExecPolicyAmendment &&
			msg.ExecPolicyAmendment != nil && len(msg.ExecPolicyAmendment.Command) > 0 {
			return codex.ApprovedWithAmendment(msg.ExecPolicyAmendment.Command)
		}
		if msg.Decision == codex.DecisionApprovedForSession {
			return codex.ApprovedForSession()
		}
		return codex.Approved()
	}
	if msg.Decision == codex.DecisionDenied {
		return codex.Denied()
	}
	return codex.Abort()
}

// Reset cancels every pending request with a terminal "session reset"
// failure. Idempotent and safe under concurrent invocation: overlapping
// calls are no-ops, and the table is snapshotted and cleared up front so
// requests registered during the cancellation pass are unaffected.
func (b *Bridge) Reset(reason string) {
	b.mu.Lock()
	if b.resetting {
		b.mu.Unlock()
		return
	}
	b.resetting = true
	snapshot := b.pending
	b.pending = make(map[string]*pendingRequest)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.resetting = false
		b.mu.Unlock()
	}()

	if len(snapshot) == 0 {
		return
	}

	b.log.Info().Int("pending", len(snapshot)).Str("reason", reason).Msg("canceling pending approvals")

	completedAt := time.Now().UnixMilli()
	b.state.Update(func(st *agentstate.State) {
		for key := range snapshot {
			rec := st.Requests[key]
			delete(st.Requests, key)
			st.CompletedRequests[key] = agentstate.CompletedRequest{
				Tool:        rec.Tool,
				Input:       rec.Input,
				CreatedAt:   rec.CreatedAt,
				CompletedAt: completedAt,
				Status:      agentstate.StatusCanceled,
				Reason:      reason,
			}
		}
	})

	err := fmt.Errorf("session reset: %s", reason)
	for key, req := range snapshot {
		req.timer.Stop()
		event.Publish(event.Event{
			Type: event.PermissionResolved,
			Data: event.PermissionResolvedData{ID: key, Status: string(agentstate.StatusCanceled)},
		})
		b.safeDeliver(req, codex.ReviewDecision{}, err)
	}
}

// abandon drops a pending entry whose caller stopped waiting.
func (b *Bridge) abandon(key, reason string) {
	b.mu.Lock()
	req, ok := b.pending[key]
	if ok {
		delete(b.pending, key)
	}
	b.mu.Unlock()

	if !ok {
		return
	}

	req.timer.Stop()
	completedAt := time.Now().UnixMilli()
	b.state.Update(func(st *agentstate.State) {
		rec := st.Requests[key]
		delete(st.Requests, key)
		st.CompletedRequests[key] = agentstate.CompletedRequest{
			Tool:        rec.Tool,
			Input:       rec.Input,
			CreatedAt:   rec.CreatedAt,
			CompletedAt: completedAt,
			Status:      agentstate.StatusCanceled,
			Reason:      reason,
		}
	})
}

// onAdvisoryTimeout surfaces a still-pending request. Diagnostic only: the
// request is neither canceled nor resolved.
func (b *Bridge) onAdvisoryTimeout(key string) {
	b.mu.Lock()
	req, ok := b.pending[key]
	b.mu.Unlock()
	if !ok {
		return
	}

	elapsed := time.Since(req.createdAt)
	b.log.Warn().Str("id", key).Str("tool", req.tool).Dur("elapsed", elapsed).Msg("approval still pending")
	event.Publish(event.Event{
		Type: event.PermissionTimeout,
		Data: event.PermissionTimeoutData{ID: key, Tool: req.tool, ElapsedMS: elapsed.Milliseconds()},
	})
}

// safeDeliver invokes a completion handle, containing any panic so one
// misbehaving consumer cannot abort the remaining cancellations.
func (b *Bridge) safeDeliver(req *pendingRequest, decision codex.ReviewDecision, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Str("id", req.id).Any("panic", r).Msg("approval handler panicked")
		}
	}()
	req.deliver(decision, err)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Package agentstate holds the externally visible agent state: approval
// requests in flight and the completed-request history. Mutations go
// through Update, which applies a pure transformation atomically and then
// persists a snapshot. Keys are always normalized string ids.
package agentstate

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shayne/happy/internal/codex"
	"github.com/shayne/happy/internal/logging"
	"github.com/shayne/happy/internal/storage"
)

// Status is the terminal status of a completed request.
type Status string

const (
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusCanceled Status = "canceled"
)

// RequestRecord is an approval request awaiting a decision.
type RequestRecord struct {
	Tool      string `json:"tool"`
	Input     any    `json:"input,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// CompletedRequest is the terminal snapshot of a request.
type CompletedRequest struct {
	Tool        string                `json:"tool"`
	Input       any                   `json:"input,omitempty"`
	CreatedAt   int64                 `json:"createdAt"`
	CompletedAt int64                 `json:"completedAt"`
	Status      Status                `json:"status"`
	Decision    *codex.ReviewDecision `json:"decision,omitempty"`
	Reason      string                `json:"reason,omitempty"`
}

// State is the full agent state document.
type State struct {
	Requests          map[string]RequestRecord    `json:"requests"`
	CompletedRequests map[string]CompletedRequest `json:"completedRequests"`
}

func newState() State {
	return State{
		Requests:          make(map[string]RequestRecord),
		CompletedRequests: make(map[string]CompletedRequest),
	}
}

// Store owns a State and serializes mutations. Persistence is best-effort:
// a failed write leaves the in-memory state authoritative and is logged,
// matching the accepted crash inconsistency window.
type Store struct {
	mu      sync.Mutex
	state   State
	storage *storage.Storage
	path    []string
	log     zerolog.Logger
}

// NewStore creates a store for one agent session. A nil storage keeps the
// state memory-only (tests, ephemeral sessions). An existing snapshot for
// the session is loaded if present.
func NewStore(st *storage.Storage, sessionID string) *Store {
	s := &Store{
		state:   newState(),
		storage: st,
		path:    []string{"agent-state", sessionID},
		log:     logging.Component("agentstate"),
	}

	if st != nil {
		var loaded State
		if err := st.Get(context.Background(), s.path, &loaded); err == nil {
			if loaded.Requests == nil {
				loaded.Requests = make(map[string]RequestRecord)
			}
			if loaded.CompletedRequests == nil {
				loaded.CompletedRequests = make(map[string]CompletedRequest)
			}
			s.state = loaded
		}
	}

	return s
}

// Update applies fn to the state atomically and persists the result.
func (s *Store) Update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)

	if s.storage == nil {
		return
	}
	if err := s.storage.Put(context.Background(), s.path, s.state); err != nil {
		s.log.Error().Err(err).Msg("failed to persist agent state")
	}
}

// Snapshot returns a copy of the current state. The maps are copied so
// callers can iterate without racing Update.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := newState()
	for k, v := range s.state.Requests {
		snap.Requests[k] = v
	}
	for k, v := range s.state.CompletedRequests {
		snap.CompletedRequests[k] = v
	}
	return snap
}

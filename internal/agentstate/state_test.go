package agentstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shayne/happy/internal/codex"
	"github.com/shayne/happy/internal/storage"
)

func TestStore_UpdateAndSnapshot(t *testing.T) {
	s := NewStore(nil, "sess")

	now := time.Now().UnixMilli()
	s.Update(func(st *State) {
		st.Requests["42"] = RequestRecord{Tool: "CodexBash", CreatedAt: now}
	})

	snap := s.Snapshot()
	require.Contains(t, snap.Requests, "42")
	assert.Equal(t, "CodexBash", snap.Requests["42"].Tool)

	// Mutating the snapshot must not touch the store.
	delete(snap.Requests, "42")
	assert.Contains(t, s.Snapshot().Requests, "42")
}

func TestStore_MoveToCompleted(t *testing.T) {
	s := NewStore(nil, "sess")

	s.Update(func(st *State) {
		st.Requests["exec-1"] = RequestRecord{Tool: "CodexBash", CreatedAt: 100}
	})

	decision := codex.Approved()
	s.Update(func(st *State) {
		rec := st.Requests["exec-1"]
		delete(st.Requests, "exec-1")
		st.CompletedRequests["exec-1"] = CompletedRequest{
			Tool:        rec.Tool,
			Input:       rec.Input,
			CreatedAt:   rec.CreatedAt,
			CompletedAt: 200,
			Status:      StatusApproved,
			Decision:    &decision,
		}
	})

	snap := s.Snapshot()
	assert.Empty(t, snap.Requests)
	require.Contains(t, snap.CompletedRequests, "exec-1")
	assert.Equal(t, StatusApproved, snap.CompletedRequests["exec-1"].Status)
}

func TestStore_PersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	st := storage.New(dir)

	s := NewStore(st, "sess")
	s.Update(func(state *State) {
		state.CompletedRequests["1"] = CompletedRequest{
			Tool: "WebSearch", Status: StatusDenied, CreatedAt: 1, CompletedAt: 2,
		}
	})

	reloaded := NewStore(st, "sess")
	snap := reloaded.Snapshot()
	require.Contains(t, snap.CompletedRequests, "1")
	assert.Equal(t, StatusDenied, snap.CompletedRequests["1"].Status)
	assert.NotNil(t, snap.Requests)
}

func TestStore_FreshSessionStartsEmpty(t *testing.T) {
	s := NewStore(storage.New(t.TempDir()), "new-session")
	snap := s.Snapshot()
	assert.Empty(t, snap.Requests)
	assert.Empty(t, snap.CompletedRequests)
}

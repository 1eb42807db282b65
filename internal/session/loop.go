package session

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/shayne/happy/internal/event"
	"github.com/shayne/happy/internal/logging"
)

const (
	// queueDepth bounds how many user messages may wait for submission.
	queueDepth = 64
	// RetryInitialInterval is the initial interval for exponential backoff.
	RetryInitialInterval = time.Second
	// RetryMaxInterval is the maximum interval for exponential backoff.
	RetryMaxInterval = 30 * time.Second
	// RetryMaxElapsedTime is the maximum total time for retries.
	RetryMaxElapsedTime = 2 * time.Minute
	// MaxRetries is the maximum number of submission retries.
	MaxRetries = 3
)

// Submitter forwards a user message to the running agent.
type Submitter interface {
	Submit(ctx context.Context, msg Message) error
}

// newSubmitBackoff creates an exponential backoff with jitter for agent
// submission retries, bounded by both attempt count and elapsed time and
// canceled with the loop's context.
func newSubmitBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RetryInitialInterval
	b.MaxInterval = RetryMaxInterval
	b.MaxElapsedTime = RetryMaxElapsedTime
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, MaxRetries), ctx)
}

// Loop consumes queued user messages and forwards them to the agent.
// After an abort, if a codex session already existed, the next message is
// routed through the restart Guard before submission.
type Loop struct {
	submitter  Submitter
	collabs    Collaborators
	queue      chan Message
	newBackoff func(ctx context.Context) backoff.BackOff

	mu      sync.Mutex
	state   RestartState
	aborted bool

	log zerolog.Logger
}

// NewLoop creates a control loop submitting through submitter and using
// collabs for restart teardown.
func NewLoop(submitter Submitter, collabs Collaborators) *Loop {
	return &Loop{
		submitter:  submitter,
		collabs:    collabs,
		queue:      make(chan Message, queueDepth),
		newBackoff: newSubmitBackoff,
		log:        logging.Component("session"),
	}
}

// Enqueue queues a user message for submission and returns its id.
func (l *Loop) Enqueue(text string) string {
	msg := Message{ID: ulid.Make().String(), Text: text}
	l.queue <- msg
	return msg.ID
}

// NotifyAbort records that the current turn was aborted. The flag is
// consumed by the next message pulled off the queue.
func (l *Loop) NotifyAbort() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.aborted = true
}

// MarkSessionCreated records that a codex session now exists under the
// given mode-settings hash.
func (l *Loop) MarkSessionCreated(modeHash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SessionCreated = true
	l.state.CurrentModeHash = modeHash
}

// SetThinking tracks whether a reasoning turn is in flight.
func (l *Loop) SetThinking(thinking bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Thinking = thinking
}

// State returns the current restart state.
func (l *Loop) State() RestartState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Run processes queued messages until ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-l.queue:
			msg = l.maybeRestart(msg)
			if err := l.submit(ctx, msg); err != nil {
				l.log.Error().Err(err).Str("id", msg.ID).Msg("message submission failed")
				event.Publish(event.Event{
					Type: event.AgentStatus,
					Data: event.AgentStatusData{Message: "message delivery failed: " + err.Error()},
				})
			}
		}
	}
}

// maybeRestart consumes the abort flag and, when a session previously
// existed, runs the restart guard before handing the message back.
func (l *Loop) maybeRestart(msg Message) Message {
	l.mu.Lock()
	needed := l.aborted && l.state.SessionCreated
	l.aborted = false
	state := l.state
	l.mu.Unlock()

	if !needed {
		return msg
	}

	l.log.Info().Str("id", msg.ID).Msg("abort with live session, restarting before submit")
	next, cleared := Guard(msg, state, l.collabs)

	l.mu.Lock()
	l.state = cleared
	l.mu.Unlock()

	event.Publish(event.Event{
		Type: event.SessionRestarted,
		Data: event.SessionRestartedData{Reason: "aborted turn"},
	})
	return next
}

// submit forwards one message with retries.
func (l *Loop) submit(ctx context.Context, msg Message) error {
	return backoff.Retry(func() error {
		return l.submitter.Submit(ctx, msg)
	}, l.newBackoff(ctx))
}

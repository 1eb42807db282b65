// Package session runs the user-message control loop and the restart
// guard that tears down stale codex state after an aborted turn.
package session

// Message is one queued user message awaiting submission.
type Message struct {
	ID   string
	Text string
}

// RestartState tracks what a restart must tear down: whether a codex
// session was ever created, the hash of the mode settings it was created
// with (empty means cleared), and whether a reasoning turn is in flight.
type RestartState struct {
	SessionCreated  bool
	CurrentModeHash string
	Thinking        bool
}

// Collaborators are the teardown effects a restart performs. All six are
// required and are invoked exactly once per restart.
type Collaborators struct {
	ClearSession     func()
	ResetPermissions func()
	AbortThinking    func()
	ResetDiffs       func()
	DisableKeepAlive func(source string)
	ShowStatus       func(message string)
}

// keepAliveSource tags who disabled keep-alive during a restart.
const keepAliveSource = "remote"

// Guard performs the restart teardown for a message that must be
// reprocessed on a fresh codex session. It is a pure transformer: every
// collaborator runs exactly once, in order, regardless of the incoming
// state, and the caller receives the same message back as the next item
// to process together with a fully cleared RestartState. Deciding WHETHER
// a restart is needed is the control loop's job, not the guard's.
func Guard(msg Message, state RestartState, c Collaborators) (Message, RestartState) {
	c.ClearSession()
	c.ResetPermissions()
	c.AbortThinking()
	c.ResetDiffs()
	c.DisableKeepAlive(keepAliveSource)
	c.ShowStatus("restarting codex session")

	return msg, RestartState{}
}

package event

// PermissionRequestedData is the data for permission.requested events.
// The session channel forwards this to the remote operator.
type PermissionRequestedData struct {
	ID        string `json:"id"`
	Tool      string `json:"tool"`
	Input     any    `json:"input,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// PermissionResolvedData is the data for permission.resolved events.
type PermissionResolvedData struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "approved" | "denied" | "canceled"
}

// PermissionTimeoutData is the data for permission.timeout events.
// Advisory only: the request stays pending until a decision or reset.
type PermissionTimeoutData struct {
	ID        string `json:"id"`
	Tool      string `json:"tool"`
	ElapsedMS int64  `json:"elapsedMs"`
}

// SessionRestartedData is the data for session.restarted events.
type SessionRestartedData struct {
	Reason string `json:"reason"`
}

// AgentStatusData is the data for agent.status events, a human-readable
// status line surfaced to the operator.
type AgentStatusData struct {
	Message string `json:"message"`
}

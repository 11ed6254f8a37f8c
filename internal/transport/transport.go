package transport

import "context"

// InboundMessage is a single inbound chat event as delivered by the
// messaging transport. Sender is the transport's opaque address for the
// conversation and is never parsed by the core.
type InboundMessage struct {
	Sender   string `json:"sender"`
	Text     string `json:"text"`
	FromSelf bool   `json:"from_self"`
}

// Messenger sends outbound text messages. Send failures are non-fatal to
// the conversation core.
type Messenger interface {
	SendText(ctx context.Context, sender, text string) error
}

// PresenceState mirrors the chat presence states the transport understands.
type PresenceState string

const (
	PresenceComposing PresenceState = "composing"
	PresencePaused    PresenceState = "paused"
)

// PresenceSignaler publishes best-effort chat presence updates. Failures
// must never block or fail an outbound send.
type PresenceSignaler interface {
	SetPresence(ctx context.Context, sender string, state PresenceState) error
}

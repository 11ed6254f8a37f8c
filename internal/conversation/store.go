package conversation

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned by Lookup for senders that have never
// messaged.
var ErrSessionNotFound = errors.New("conversation: session not found")

// SessionStore is the durable keyed mapping from sender identity to
// session. Implementations must isolate concurrent access to different
// senders' records and survive process restarts.
//
// Get creates, persists and returns a default session when the sender is
// unseen; a second lookup never re-initializes an already-progressed
// session. Lookup is the read-only variant: it returns ErrSessionNotFound
// instead of creating, so inspection never mints sessions for senders that
// never messaged. Save fully overwrites the stored session.
type SessionStore interface {
	Get(ctx context.Context, sender string) (*Session, error)
	Lookup(ctx context.Context, sender string) (*Session, error)
	Save(ctx context.Context, sender string, session *Session) error
}

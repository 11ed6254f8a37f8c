package conversation

import (
	"context"
	"time"

	"github.com/soutoadv/whatsapp-intake/internal/transport"
	"github.com/soutoadv/whatsapp-intake/pkg/logging"
)

const defaultTypingDelay = 3 * time.Second

// Typist simulates a human agent typing before a reply: it signals
// "composing", waits, then signals "paused". Purely cosmetic — signal
// failures are logged and never affect the reply, and a nil Typist is a
// no-op.
type Typist struct {
	signaler transport.PresenceSignaler
	delay    time.Duration
	logger   *logging.Logger
}

// NewTypist creates a typing simulator. Returns nil when no signaler is
// available, which callers treat as "presence disabled".
func NewTypist(signaler transport.PresenceSignaler, delay time.Duration, logger *logging.Logger) *Typist {
	if signaler == nil {
		return nil
	}
	if delay <= 0 {
		delay = defaultTypingDelay
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Typist{
		signaler: signaler,
		delay:    delay,
		logger:   logger,
	}
}

// Simulate signals composing, waits for the configured delay (or until ctx
// is done), then signals paused.
func (t *Typist) Simulate(ctx context.Context, sender string) {
	if t == nil {
		return
	}
	if err := t.signaler.SetPresence(ctx, sender, transport.PresenceComposing); err != nil {
		t.logger.Debug("failed to signal composing presence", "sender", sender, "error", err)
	}

	timer := time.NewTimer(t.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	if err := t.signaler.SetPresence(ctx, sender, transport.PresencePaused); err != nil {
		t.logger.Debug("failed to signal paused presence", "sender", sender, "error", err)
	}
}

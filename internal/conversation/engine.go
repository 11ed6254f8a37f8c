package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/soutoadv/whatsapp-intake/internal/bookings"
	"github.com/soutoadv/whatsapp-intake/internal/observability/metrics"
	"github.com/soutoadv/whatsapp-intake/internal/transport"
	"github.com/soutoadv/whatsapp-intake/pkg/logging"
)

// BookingRecorder persists a completed appointment request.
type BookingRecorder interface {
	Record(ctx context.Context, sender, name, phone, scheduledFor string) (bookings.Record, error)
}

// Engine is the per-sender conversation state machine. Each inbound
// message loads the sender's session, computes the transition and replies,
// persisting the session before the reply goes out.
//
// A keyed mutex serializes handling per sender, so overlapping deliveries
// for different senders proceed in parallel without corrupting each other.
type Engine struct {
	sessions  SessionStore
	bookings  BookingRecorder
	messenger transport.Messenger
	typist    *Typist
	logger    *logging.Logger
	metrics   *metrics.ConversationMetrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// EngineOption customizes engine behavior.
type EngineOption func(*Engine)

// WithTypist enables the typing simulation before replies.
func WithTypist(t *Typist) EngineOption {
	return func(e *Engine) {
		e.typist = t
	}
}

// WithMetrics attaches conversation counters.
func WithMetrics(m *metrics.ConversationMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine builds the state machine around its injected collaborators.
func NewEngine(sessions SessionStore, recorder BookingRecorder, messenger transport.Messenger, logger *logging.Logger, opts ...EngineOption) *Engine {
	if sessions == nil {
		panic("conversation: session store cannot be nil")
	}
	if recorder == nil {
		panic("conversation: booking recorder cannot be nil")
	}
	if messenger == nil {
		panic("conversation: messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		sessions:  sessions,
		bookings:  recorder,
		messenger: messenger,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) lockFor(sender string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[sender]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sender] = lock
	}
	return lock
}

// HandleInbound processes one inbound message for one sender. Persistence
// and send failures are handled locally; the returned error only reports
// the inability to load the sender's session, in which case no transition
// happened and the message was effectively dropped.
func (e *Engine) HandleInbound(ctx context.Context, sender, text string) error {
	lock := e.lockFor(sender)
	lock.Lock()
	defer lock.Unlock()

	session, err := e.sessions.Get(ctx, sender)
	if err != nil {
		e.metrics.ObservePersistenceFailure("session")
		return fmt.Errorf("conversation: failed to load session for %s: %w", sender, err)
	}

	raw := strings.TrimSpace(text)
	normalized := Normalize(text)

	if session.Paused {
		if !IsResume(normalized) {
			e.metrics.ObserveInbound("dropped_paused")
			return nil
		}
		session.Reset()
		e.save(ctx, sender, session)
		e.metrics.ObserveInbound("handled")
		e.send(ctx, sender, replyResumed)
		return nil
	}

	e.metrics.ObserveInbound("handled")

	switch session.Step {
	case StepCollectingName:
		if raw == "" {
			e.send(ctx, sender, replyAskName)
			return nil
		}
		session.Draft.Name = raw
		session.Step = StepCollectingPhone
		e.save(ctx, sender, session)
		e.send(ctx, sender, replyAskPhone)

	case StepCollectingPhone:
		if raw == "" {
			e.send(ctx, sender, replyAskPhone)
			return nil
		}
		session.Draft.Phone = raw
		session.Step = StepCollectingSchedule
		e.save(ctx, sender, session)
		e.send(ctx, sender, replyAskSchedule)

	case StepCollectingSchedule:
		if raw == "" {
			e.send(ctx, sender, replyAskSchedule)
			return nil
		}
		session.Draft.ScheduledFor = raw
		e.completeBooking(ctx, sender, session)

	default:
		e.handleMenu(ctx, sender, session, normalized)
	}
	return nil
}

func (e *Engine) handleMenu(ctx context.Context, sender string, session *Session, normalized string) {
	intent := Classify(normalized)

	switch intent.Kind {
	case IntentGreeting:
		e.send(ctx, sender, replyMenu)

	case IntentMenuChoice:
		switch intent.Choice {
		case 1:
			session.Step = StepCollectingName
			e.save(ctx, sender, session)
			e.send(ctx, sender, replyAskName)
		case 2:
			session.Paused = true
			e.save(ctx, sender, session)
			e.send(ctx, sender, replyHandoff)
		case 3:
			e.send(ctx, sender, replyServices)
		case 4:
			e.send(ctx, sender, replyLeaveMessage)
		}

	case IntentTopic:
		e.send(ctx, sender, topicReplies[intent.Topic])

	default:
		e.send(ctx, sender, replyFallback)
	}
}

// completeBooking records the appointment, resets the session and confirms
// to the sender. The confirmation is sent even when a write fails: losing
// a record is logged and surfaced operationally, never to the sender.
func (e *Engine) completeBooking(ctx context.Context, sender string, session *Session) {
	draft := session.Draft

	if _, err := e.bookings.Record(ctx, sender, draft.Name, draft.Phone, draft.ScheduledFor); err != nil {
		e.metrics.ObservePersistenceFailure("booking_log")
		e.logger.Error("failed to record booking",
			"sender", sender,
			"error", err,
		)
	} else {
		e.metrics.ObserveBooking()
	}

	session.Reset()
	e.save(ctx, sender, session)
	e.send(ctx, sender, replyConfirmation(draft.Name, draft.Phone, draft.ScheduledFor))
}

// save persists the session before any reply that depends on it. A failed
// save is logged and not retried: the reply is still attempted and the
// next inbound message resumes from the last durable step.
func (e *Engine) save(ctx context.Context, sender string, session *Session) {
	if err := e.sessions.Save(ctx, sender, session); err != nil {
		e.metrics.ObservePersistenceFailure("session")
		e.logger.Error("failed to persist session",
			"sender", sender,
			"step", string(session.Step),
			"error", err,
		)
	}
}

// send delivers one reply, preceded by the typing simulation when enabled.
// Delivery failure is non-fatal: the sender just perceives a dropped turn.
func (e *Engine) send(ctx context.Context, sender, text string) {
	e.typist.Simulate(ctx, sender)

	if err := e.messenger.SendText(ctx, sender, text); err != nil {
		e.metrics.ObserveReply("failed")
		e.logger.Error("failed to send reply",
			"sender", sender,
			"error", err,
		)
		return
	}
	e.metrics.ObserveReply("sent")
}

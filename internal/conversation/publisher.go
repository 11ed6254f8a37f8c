package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/soutoadv/whatsapp-intake/internal/observability/metrics"
	"github.com/soutoadv/whatsapp-intake/internal/transport"
	"github.com/soutoadv/whatsapp-intake/pkg/logging"
)

// Publisher turns transport events into queued inbound jobs. Events from
// the bot's own account or without extractable text are dropped here,
// silently, before they reach the engine.
type Publisher struct {
	queue   Queue
	logger  *logging.Logger
	metrics *metrics.ConversationMetrics
}

// NewPublisher wraps the queue used to hand messages to the worker.
func NewPublisher(queue Queue, logger *logging.Logger, m *metrics.ConversationMetrics) *Publisher {
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:   queue,
		logger:  logger,
		metrics: m,
	}
}

// PublishInbound enqueues one inbound message for processing.
func (p *Publisher) PublishInbound(ctx context.Context, msg transport.InboundMessage) error {
	if msg.FromSelf || strings.TrimSpace(msg.Text) == "" || msg.Sender == "" {
		p.metrics.ObserveInbound("dropped_malformed")
		return nil
	}

	job, body, err := encodeJob(inboundJob{
		Sender:     msg.Sender,
		Text:       msg.Text,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		p.logger.Error("failed to enqueue inbound message",
			"job_id", job.ID,
			"sender", msg.Sender,
			"error", err,
		)
		return err
	}
	return nil
}

package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/soutoadv/whatsapp-intake/pkg/logging"
)

const (
	defaultWorkerCount   = 1
	defaultWaitSeconds   = 2
	defaultBatchSize     = 1
	maxWaitSeconds       = 20
	maxReceiveBatchSize  = 10
	deleteTimeoutSeconds = 5
)

// Worker consumes inbound jobs from the queue and feeds them to the engine.
//
// The default single consumer with batch size 1 preserves arrival order,
// which the state machine relies on per sender. Raising the worker count is
// safe for correctness (the engine serializes per sender) but only keeps
// per-sender ordering when the queue itself does (e.g. SQS FIFO).
type Worker struct {
	engine *Engine
	queue  Queue
	logger *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the queue long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// NewWorker builds a queue consumer around the engine.
func NewWorker(engine *Engine, queue Queue, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if engine == nil {
		panic("conversation: engine cannot be nil")
	}
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		engine: engine,
		queue:  queue,
		logger: logger,
		cfg:    cfg,
	}
}

// Start launches the consumer goroutines. They run until ctx is canceled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.run(ctx)
		}()
	}
}

// Wait blocks until all consumer goroutines have exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue receive failed", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, msg := range messages {
			w.process(ctx, msg)
		}
	}
}

// process handles one queued message. Jobs are acknowledged regardless of
// outcome: failures are logged, never retried automatically, and must not
// stall other senders' messages behind a poison job.
func (w *Worker) process(ctx context.Context, msg queueMessage) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("panic while handling inbound message",
				"message_id", msg.ID,
				"panic", r,
			)
		}
		w.ack(msg)
	}()

	var job inboundJob
	if err := json.Unmarshal([]byte(msg.Body), &job); err != nil {
		w.logger.Error("failed to decode inbound job",
			"message_id", msg.ID,
			"error", err,
		)
		return
	}

	if err := w.engine.HandleInbound(ctx, job.Sender, job.Text); err != nil {
		w.logger.Error("failed to handle inbound message",
			"job_id", job.ID,
			"sender", job.Sender,
			"error", err,
		)
	}
}

func (w *Worker) ack(msg queueMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeoutSeconds*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		w.logger.Error("failed to delete queue message",
			"message_id", msg.ID,
			"error", err,
		)
	}
}

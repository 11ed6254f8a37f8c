package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/soutoadv/whatsapp-intake/internal/transport"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWorkerProcessesQueuedJobs(t *testing.T) {
	store := newMemSessionStore()
	messenger := &fakeMessenger{}
	engine := newTestEngine(store, &fakeRecorder{}, messenger)

	queue := NewMemoryQueue(8)
	worker := NewWorker(engine, queue, nil, WithReceiveWaitSeconds(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	pub := NewPublisher(queue, nil, nil)
	if err := pub.PublishInbound(ctx, transport.InboundMessage{
		Sender: "a@s.whatsapp.net",
		Text:   "oi",
	}); err != nil {
		t.Fatalf("PublishInbound failed: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool {
		return len(messenger.replies()) == 1
	})
	if got := messenger.replies()[0]; got != replyMenu {
		t.Fatalf("expected menu reply, got %q", got)
	}

	cancel()
	worker.Wait()
}

func TestWorkerPreservesOrderForOneSender(t *testing.T) {
	store := newMemSessionStore()
	messenger := &fakeMessenger{}
	engine := newTestEngine(store, &fakeRecorder{}, messenger)

	queue := NewMemoryQueue(8)
	worker := NewWorker(engine, queue, nil, WithReceiveWaitSeconds(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	pub := NewPublisher(queue, nil, nil)
	for _, text := range []string{"1", "Ana", "11999999999"} {
		if err := pub.PublishInbound(ctx, transport.InboundMessage{
			Sender: "a@s.whatsapp.net",
			Text:   text,
		}); err != nil {
			t.Fatalf("PublishInbound failed: %v", err)
		}
	}

	waitFor(t, 3*time.Second, func() bool {
		return len(messenger.replies()) == 3
	})
	cancel()
	worker.Wait()

	want := []string{replyAskName, replyAskPhone, replyAskSchedule}
	replies := messenger.replies()
	for i := range want {
		if replies[i] != want[i] {
			t.Fatalf("expected replies %v, got %v", want, replies)
		}
	}
	if step := store.stored("a@s.whatsapp.net").Step; step != StepCollectingSchedule {
		t.Fatalf("expected schedule step, got %s", step)
	}
}

func TestWorkerAcksUndecodableJobs(t *testing.T) {
	store := newMemSessionStore()
	messenger := &fakeMessenger{}
	engine := newTestEngine(store, &fakeRecorder{}, messenger)

	queue := &recordingQueue{}
	worker := NewWorker(engine, queue, nil)

	worker.process(context.Background(), queueMessage{
		ID:            "m1",
		Body:          "{not json",
		ReceiptHandle: "rh-1",
	})

	if len(queue.deleted) != 1 || queue.deleted[0] != "rh-1" {
		t.Fatalf("expected poison message to be acked, got %v", queue.deleted)
	}
	if len(messenger.replies()) != 0 {
		t.Fatal("expected no reply for an undecodable job")
	}
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	store := newMemSessionStore()
	engine := newTestEngine(store, &fakeRecorder{}, &fakeMessenger{})
	worker := NewWorker(engine, NewMemoryQueue(8), nil, WithReceiveWaitSeconds(20))

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		worker.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

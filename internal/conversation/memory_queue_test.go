package conversation

import (
	"context"
	"testing"
	"time"
)

func TestMemoryQueueDeliversInOrder(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx := context.Background()

	for _, body := range []string{"first", "second", "third"} {
		if err := q.Send(ctx, body); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	var got []string
	for len(got) < 3 {
		messages, err := q.Receive(ctx, 1, 1)
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		for _, msg := range messages {
			got = append(got, msg.Body)
		}
	}

	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMemoryQueueReceiveBatch(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := q.Send(ctx, "msg"); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	messages, err := q.Receive(ctx, 10, 1)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected batch of 3, got %d", len(messages))
	}
}

func TestMemoryQueueReceiveTimesOutEmpty(t *testing.T) {
	q := NewMemoryQueue(8)

	start := time.Now()
	messages, err := q.Receive(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(messages))
	}
	if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
		t.Fatalf("expected Receive to wait, returned after %s", elapsed)
	}
}

func TestMemoryQueueReceiveHonorsContext(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := q.Receive(ctx, 1, 20)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not return after cancellation")
	}
}

func TestMemoryQueueDeleteIsNoop(t *testing.T) {
	q := NewMemoryQueue(8)
	if err := q.Delete(context.Background(), "any-handle"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}

package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemory_PublishConsume(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	want := EmailJob{To: "a@x", Subject: "Your login code", Body: "123456"}
	if err := q.Publish(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-jobs:
		if got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for job")
	}
}

func TestInMemory_ConsumeClosesOnCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	jobs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	// Leave a job queued with nobody reading, then cancel. The consume
	// goroutine must give up the pending send and close the channel.
	if err := q.Publish(ctx, EmailJob{To: "a@x"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-jobs:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("jobs channel did not close after cancel")
		}
	}
}

func TestInMemory_PublishCancelled(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Publish(ctx, EmailJob{To: "a@x"}); err == nil {
		t.Fatal("publish on a full queue with a dead context should fail")
	}
}

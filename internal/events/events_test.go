package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventSystem(t *testing.T) {
	t.Run("Subscribe and Publish", func(t *testing.T) {
		// Reset handlers for clean test environment
		handlers = make(map[EventType][]Handler)
		eventChan = make(chan Event, EventChannelSize)

		var wg sync.WaitGroup
		wg.Add(1)

		var receivedEvent Event
		testHandler := func(ctx context.Context, event Event) error {
			receivedEvent = event
			wg.Done()
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Start(ctx)
		Subscribe(EventJobCompleted, testHandler)

		testEvent := Event{
			Type:      EventJobCompleted,
			JobID:     "job-123",
			JobType:   "text-to-video",
			ResultURL: "https://store.test/bucket/results/job-123/result.mp4",
		}
		Publish(testEvent)

		// Wait for handler to process event with timeout
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Test timed out waiting for event handler")
		}

		assert.Equal(t, testEvent.Type, receivedEvent.Type)
		assert.Equal(t, testEvent.JobID, receivedEvent.JobID)
		assert.Equal(t, testEvent.JobType, receivedEvent.JobType)
		assert.Equal(t, testEvent.ResultURL, receivedEvent.ResultURL)
	})

	t.Run("Multiple Handlers", func(t *testing.T) {
		handlers = make(map[EventType][]Handler)
		eventChan = make(chan Event, EventChannelSize)

		var wg sync.WaitGroup
		wg.Add(2)

		handlerCalls := make(map[string]bool)
		var mu sync.Mutex

		handler1 := func(ctx context.Context, event Event) error {
			mu.Lock()
			handlerCalls["handler1"] = true
			mu.Unlock()
			wg.Done()
			return nil
		}

		handler2 := func(ctx context.Context, event Event) error {
			mu.Lock()
			handlerCalls["handler2"] = true
			mu.Unlock()
			wg.Done()
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Start(ctx)
		Subscribe(EventJobFailed, handler1)
		Subscribe(EventJobFailed, handler2)

		Publish(Event{
			Type:  EventJobFailed,
			JobID: "job-456",
			Error: "CUDA out of memory",
		})

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Test timed out waiting for event handlers")
		}

		mu.Lock()
		assert.True(t, handlerCalls["handler1"], "Handler 1 should have been called")
		assert.True(t, handlerCalls["handler2"], "Handler 2 should have been called")
		mu.Unlock()
	})

	t.Run("Context Cancellation", func(t *testing.T) {
		handlers = make(map[EventType][]Handler)
		eventChan = make(chan Event, EventChannelSize)

		ctx, cancel := context.WithCancel(context.Background())

		Start(ctx)

		Subscribe(EventJobSubmitted, func(ctx context.Context, event Event) error {
			t.Error("Handler should not be called after context cancellation")
			return nil
		})

		cancel()

		// Give some time for the goroutine to process the cancellation
		time.Sleep(100 * time.Millisecond)

		// Publishing after cancellation should not block or panic
		Publish(Event{Type: EventJobSubmitted, JobID: "job-789"})

		time.Sleep(100 * time.Millisecond)
	})

	t.Run("Different Event Types", func(t *testing.T) {
		handlers = make(map[EventType][]Handler)
		eventChan = make(chan Event, EventChannelSize)

		var wg sync.WaitGroup
		wg.Add(2)

		receivedEvents := make(map[EventType]bool)
		var mu sync.Mutex

		completedHandler := func(ctx context.Context, event Event) error {
			mu.Lock()
			receivedEvents[EventJobCompleted] = true
			mu.Unlock()
			wg.Done()
			return nil
		}

		deletedHandler := func(ctx context.Context, event Event) error {
			mu.Lock()
			receivedEvents[EventAssetDeleted] = true
			mu.Unlock()
			wg.Done()
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Start(ctx)
		Subscribe(EventJobCompleted, completedHandler)
		Subscribe(EventAssetDeleted, deletedHandler)

		Publish(Event{Type: EventJobCompleted, JobID: "job-1"})
		Publish(Event{Type: EventAssetDeleted, AssetID: "asset-1"})

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Test timed out waiting for event handlers")
		}

		mu.Lock()
		assert.True(t, receivedEvents[EventJobCompleted], "Completed event should have been handled")
		assert.True(t, receivedEvents[EventAssetDeleted], "Deleted event should have been handled")
		mu.Unlock()
	})
}

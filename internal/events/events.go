// Package events provides event handling functionality
package events

import (
	"context"
	"sync"

	"github.com/mediaforge/mediaforge/internal/logger"
)

// EventType represents the type of lifecycle event
type EventType string

const (
	// EventJobSubmitted is emitted when a job is accepted and dispatched
	EventJobSubmitted EventType = "job_submitted"
	// EventJobCompleted is emitted when a job settles successfully
	EventJobCompleted EventType = "job_completed"
	// EventJobFailed is emitted when a job is marked failed
	EventJobFailed EventType = "job_failed"
	// EventAssetDeleted is emitted when an asset is removed
	EventAssetDeleted EventType = "asset_deleted"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a lifecycle event
type Event struct {
	Type      EventType // The type of event
	JobID     string    // The job ID, for job events
	JobType   string    // The generation type, for job events
	AssetID   string    // The asset ID, for asset events
	ResultURL string    // The stored result URL, for completion events
	Error     string    // The failure message, for failure events
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	// handlers is a map of event types to their handlers
	handlers = make(map[EventType][]Handler)
	// handlersMu is a mutex for the handlers map
	handlersMu sync.RWMutex
	// eventChan is a channel for events
	eventChan = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific event type
func Subscribe(eventType EventType, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[eventType] = append(handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish sends an event to be processed
func Publish(event Event) {
	eventChan <- event
	logger.Debugf("Published event: %s (Job: %s)", event.Type, event.JobID)
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("Started event processing loop")
}

// processEvents handles events in the background
func processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-eventChan:
			handlersMu.RLock()
			eventHandlers := handlers[event.Type]
			handlersMu.RUnlock()

			// Process event with all registered handlers
			for _, handler := range eventHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s: %v", e.Type, err)
					}
				}(handler, event)
			}
		}
	}
}

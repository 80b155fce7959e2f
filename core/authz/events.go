package authz

import (
	"context"
	"time"

	"github.com/asaidimu/go-sieve/core/permission"
)

// EventType names a lifecycle event of a permission batch.
type EventType string

const (
	CheckStart   EventType = "permission:check:start"
	CheckSuccess EventType = "permission:check:success"
	CheckFailed  EventType = "permission:check:failed"
)

// Event describes one stage of a permission batch.
type Event struct {
	Type      EventType          `json:"type"`               // The stage that was reached.
	Timestamp int64              `json:"timestamp"`          // Unix milliseconds.
	BatchID   string             `json:"batchId"`            // Correlates the events of one batch.
	Keys      []string           `json:"keys"`               // Requested check keys in input order.
	Results   permission.Results `json:"results,omitempty"`  // Typed results, on success.
	Error     *string            `json:"error,omitempty"`    // Failure message, on failure.
	Duration  *int64             `json:"duration,omitempty"` // Milliseconds since the start event.
}

// Callback receives events for a subscription.
type Callback func(ctx context.Context, event Event) error

// SubscriptionOptions registers a callback for one event type.
type SubscriptionOptions struct {
	Event       EventType
	Label       *string
	Description *string
	Callback    Callback
}

// SubscriptionInfo describes an active subscription.
type SubscriptionInfo struct {
	Id          *string   `json:"id,omitempty"`
	Event       EventType `json:"event"`
	Label       *string   `json:"label,omitempty"`
	Description *string   `json:"description,omitempty"`
	Unsubscribe func()    `json:"-"`
}

func createEvent(eventType EventType, batchID string, keys []string, results permission.Results, err *string, startTime time.Time) Event {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		BatchID:   batchID,
		Keys:      keys,
		Results:   results,
		Error:     err,
		Duration:  duration,
	}
}

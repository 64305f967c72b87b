// Package service implements the core operations of the social
// graph: friendship requests, direct messages, feed and story
// visibility. Services validate, persist through the repositories,
// then push live notifications through the Deliverer. Notification
// failures are logged and dropped; they never surface in the
// mutation's result.
package service

import (
	"context"

	"social-service/internal/websocket"
)

// Deliverer pushes events to live connections. Implemented by the
// websocket hub; tests substitute a recorder.
type Deliverer interface {
	Deliver(userID uint, event *websocket.Event)
	Broadcast(event *websocket.Event)
}

// EventSink mirrors broadcast events to an external stream (Kafka)
// for consumers outside the process. Best-effort: a sink failure
// never affects the triggering mutation.
type EventSink interface {
	Publish(ctx context.Context, event *websocket.Event) error
}

// NopEventSink discards events. Used when no brokers are configured.
type NopEventSink struct{}

func (NopEventSink) Publish(context.Context, *websocket.Event) error { return nil }

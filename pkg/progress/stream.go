// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package progress dispatches analysis progress events to subscribers.
package progress

import (
	"sync"

	"github.com/morphinspector/morphinspector/pkg/analysis"
)

// Subscriber handles progress events.
type Subscriber interface {
	// Handle processes an event. Called synchronously by Stream.OnEvent.
	Handle(event analysis.ProgressEvent)

	// Name returns a unique identifier for this subscriber.
	Name() string

	// ShouldHandle decides if this subscriber cares about this event.
	ShouldHandle(event analysis.ProgressEvent) bool
}

// Stream is a synchronous event dispatcher. Events reach subscribers in
// emission order, which keeps CLI output ordered.
type Stream struct {
	subscribers []Subscriber
	mu          sync.RWMutex
}

var _ analysis.ProgressSink = (*Stream)(nil)

// NewStream creates a stream with no subscribers.
func NewStream() *Stream {
	return &Stream{subscribers: make([]Subscriber, 0, 2)}
}

// Subscribe registers sub. Subscribers are called in registration order.
func (s *Stream) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, sub)
}

// OnEvent dispatches event to every subscriber that wants it.
func (s *Stream) OnEvent(event analysis.ProgressEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscribers {
		if sub.ShouldHandle(event) {
			sub.Handle(event)
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (s *Stream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

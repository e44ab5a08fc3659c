package queue

import (
	"errors"
	"fmt"
	"sync"
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

var ErrNoSubscribers = errors.New("no subscribers")

// InMemoryQueue delivers each published payload to the topic's handlers in
// subscription order, on the publishing goroutine. Failed handlers are not
// retried; their errors are joined and returned to the publisher.
type InMemoryQueue struct {
	mu       sync.RWMutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.RLock()
	handlers := append([]func(payload any) error(nil), q.handlers[topic]...)
	q.mu.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("%w for topic %s", ErrNoSubscribers, topic)
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	if handler == nil {
		return errors.New("nil handler")
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)

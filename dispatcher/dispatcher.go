/*
Package dispatcher provides a synchronous in-process event dispatcher.
*/
package dispatcher

import "context"

func New[T any]() *Dispatcher[T] {
	return &Dispatcher[T]{
		handlers: map[string][]registration[T]{},
	}
}

// On registers handler for topic and returns an id for Off.
func (d *Dispatcher[T]) On(topic string, handler Handler[T]) uint32 {
	id := d.counter.Inc()

	d.mu.Lock()
	d.handlers[topic] = append(d.handlers[topic], registration[T]{id: id, handler: handler})
	d.mu.Unlock()

	return id
}

// Off removes the registration id from topic. Unknown ids are a no-op.
func (d *Dispatcher[T]) Off(topic string, id uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	registrations := d.handlers[topic]
	for i, reg := range registrations {
		if reg.id == id {
			d.handlers[topic] = append(registrations[:i], registrations[i+1:]...)
			break
		}
	}

	if len(d.handlers[topic]) == 0 {
		delete(d.handlers, topic)
	}
}

// Emit runs every handler of topic synchronously, in registration order.
// Emitting on a topic with no handlers is a no-op.
func (d *Dispatcher[T]) Emit(ctx context.Context, topic string, payload T) {
	d.mu.RLock()
	registrations := append([]registration[T](nil), d.handlers[topic]...)
	d.mu.RUnlock()

	for _, reg := range registrations {
		reg.handler(ctx, payload)
	}
}

// Topics returns the topics that currently have at least one handler.
func (d *Dispatcher[T]) Topics() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	topics := make([]string, 0, len(d.handlers))
	for topic := range d.handlers {
		topics = append(topics, topic)
	}

	return topics
}

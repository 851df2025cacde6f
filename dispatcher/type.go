package dispatcher

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Handler consumes one emitted event.
type Handler[T any] func(ctx context.Context, payload T)

// Dispatcher routes in-process events by topic. It bridges messages claimed
// on the bus to business logic inside one process, keyed by the internal
// event labels of the channel catalog.
type Dispatcher[T any] struct {
	mu sync.RWMutex

	handlers map[string][]registration[T]
	counter  atomic.Uint32
}

type registration[T any] struct {
	id      uint32
	handler Handler[T]
}

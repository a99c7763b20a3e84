package hub

import (
	"sync"

	"github.com/google/uuid"
)

// Subscriber is one attached client's handle on a broadcast group. Events
// arrive on C in publish order (FIFO per subscriber). When the hub drops the
// subscriber - unsubscribe, slow-consumer eviction, or hub shutdown - Done
// is closed and no further events arrive.
type Subscriber struct {
	id       uuid.UUID
	group    string
	events   chan []byte
	done     chan struct{}
	stopOnce sync.Once
}

func newSubscriber(group string, buffer int) *Subscriber {
	return &Subscriber{
		id:     uuid.New(),
		group:  group,
		events: make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// C delivers published events in FIFO order.
func (s *Subscriber) C() <-chan []byte {
	return s.events
}

// Done is closed when the subscriber has been detached from its group.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Group returns the group this subscriber is attached to.
func (s *Subscriber) Group() string {
	return s.group
}

// offer enqueues without blocking; false means the buffer is full.
func (s *Subscriber) offer(event []byte) bool {
	select {
	case s.events <- event:
		return true
	default:
		return false
	}
}

func (s *Subscriber) close() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

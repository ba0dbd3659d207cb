package workers

import (
	"sync"

	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/messages"
)

// DefaultSubscriberBuffer is used when Subscribe is given a non-positive size.
const DefaultSubscriberBuffer = 64

// Broadcaster fans snapshots out to any number of subscribers. A subscriber
// that falls behind misses snapshots rather than stalling the publisher.
type Broadcaster struct {
	lock        sync.RWMutex
	subscribers map[uint64]chan *messages.Snapshot
	nextID      uint64
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *messages.Snapshot),
	}
}

// Subscribe returns a channel receiving every snapshot published from now on
// and a function that unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe(size int) (<-chan *messages.Snapshot, func()) {
	if size <= 0 {
		size = DefaultSubscriberBuffer
	}
	ch := make(chan *messages.Snapshot, size)

	b.lock.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.lock.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.lock.Lock()
			defer b.lock.Unlock()
			if _, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				close(ch)
			}
		})
	}
}

// Publish hands snapshot to every subscriber with room for it.
func (b *Broadcaster) Publish(snapshot *messages.Snapshot) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	for id, ch := range b.subscribers {
		select {
		case ch <- snapshot:
		default:
			log.Trace("Subscriber %d is behind, dropping frame %d", id, snapshot.Frame)
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.subscribers)
}

// Close unsubscribes everyone.
func (b *Broadcaster) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}

package stream

import (
	"encoding/json"
	"log"
	"sync"
)

const subscriberBuffer = 16

// Subscriber is one connected stream client. C carries serialized
// payloads and is closed on Unsubscribe.
type Subscriber struct {
	C chan []byte
}

// Broadcaster fans flight updates out to every connected subscriber.
// Subscribers are kept in registration order; there is no backlog, so a
// subscriber only sees updates published while it is registered.
type Broadcaster struct {
	mu   sync.Mutex
	subs []*Subscriber
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{C: make(chan []byte, subscriberBuffer)}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub
}

func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(sub.C)
			return
		}
	}
}

// Publish serializes v once and delivers it to each subscriber in
// registration order. A subscriber whose buffer is full misses the
// message; it never blocks or fails the publish for the others.
func (b *Broadcaster) Publish(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("broadcaster: marshal payload: %v", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub.C <- data:
		default:
		}
	}
}

// Len reports the number of registered subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

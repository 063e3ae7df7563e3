package notify

import "sync"

type Topic string

const TopicMessagesChanged Topic = "messages-changed"

// Broadcaster fans topic signals out to in-process subscribers. Sends never
// block: a subscriber with a pending signal simply keeps that one.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[Topic]map[chan struct{}]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[Topic]map[chan struct{}]struct{})}
}

// Subscribe returns a signal channel and a func that unsubscribes.
func (b *Broadcaster) Subscribe(t Topic) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	if b.subs[t] == nil {
		b.subs[t] = make(map[chan struct{}]struct{})
	}
	b.subs[t][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[t], ch)
			b.mu.Unlock()
		})
	}
}

func (b *Broadcaster) Publish(t Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[t] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

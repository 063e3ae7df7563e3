package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shopfront/internal/domain/models"
	"shopfront/internal/metrics"
)

type MessageSource interface {
	ListMessages(ctx context.Context) ([]models.Message, error)
}

const DefaultMessagesInterval = 30 * time.Second

// MessagePoller keeps the unread message badge count. Besides its own tick it
// refreshes whenever TopicMessagesChanged is published.
type MessagePoller struct {
	src      MessageSource
	bus      *Broadcaster
	interval time.Duration
	log      *slog.Logger

	mu      sync.RWMutex
	unread  int
	updated time.Time
}

func NewMessagePoller(src MessageSource, bus *Broadcaster, interval time.Duration, log *slog.Logger) *MessagePoller {
	if interval <= 0 {
		interval = DefaultMessagesInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &MessagePoller{
		src:      src,
		bus:      bus,
		interval: interval,
		log:      log.With("poller", "messages"),
	}
}

func CountUnread(msgs []models.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Status == models.MessageUnread {
			n++
		}
	}
	return n
}

// Serve polls until ctx is done.
func (m *MessagePoller) Serve(ctx context.Context) error {
	var changed <-chan struct{}
	if m.bus != nil {
		ch, unsubscribe := m.bus.Subscribe(TopicMessagesChanged)
		defer unsubscribe()
		changed = ch
	}

	m.Refresh(ctx)

	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			m.Refresh(ctx)
		case <-changed:
			m.Refresh(ctx)
		}
	}
}

func (m *MessagePoller) String() string { return "message-poller" }

// Refresh fetches messages once. On failure the previous count stays.
func (m *MessagePoller) Refresh(ctx context.Context) bool {
	msgs, err := m.src.ListMessages(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.log.Warn("poll cycle failed", "err", err)
			metrics.PollCycles.WithLabelValues("messages", "error").Inc()
		}
		return false
	}

	n := CountUnread(msgs)
	m.mu.Lock()
	m.unread = n
	m.updated = time.Now()
	m.mu.Unlock()

	metrics.PollCycles.WithLabelValues("messages", "ok").Inc()
	metrics.Unseen.WithLabelValues("unread_message").Set(float64(n))
	return true
}

type UnreadCount struct {
	Unread    int       `json:"unread"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *MessagePoller) Unread() UnreadCount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return UnreadCount{Unread: m.unread, UpdatedAt: m.updated}
}

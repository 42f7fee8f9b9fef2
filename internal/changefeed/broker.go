// Package changefeed wakes long-polling readers when a topic changes.
//
// Every topic carries a monotonically increasing version. Readers remember
// the version they last saw and block in Wait until it moves. With a Redis
// client attached, publishes are relayed over pub/sub so readers on every
// instance wake up.
package changefeed

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TopicJobs = "jobs"

	DefaultChannel = "dashboard:changefeed"
)

type topicState struct {
	version uint64
	changed chan struct{}
}

type Broker struct {
	mu     sync.Mutex
	topics map[string]*topicState

	client  *redis.Client
	channel string
	origin  string
}

// NewBroker returns an in-process broker.
func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string]*topicState),
		origin: uuid.NewString(),
	}
}

// NewRedisBroker returns a broker that also relays publishes through Redis.
// Run must be started for remote publishes to reach local readers.
func NewRedisBroker(client *redis.Client, channel string) *Broker {
	b := NewBroker()
	b.client = client
	b.channel = channel
	if b.channel == "" {
		b.channel = DefaultChannel
	}
	return b
}

// Version returns the current version of topic.
func (b *Broker) Version(topic string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state(topic).version
}

// Publish marks topic as changed.
func (b *Broker) Publish(ctx context.Context, topic string) error {
	b.bump(topic)
	if b.client == nil {
		return nil
	}
	return b.client.Publish(ctx, b.channel, b.origin+"|"+topic).Err()
}

// Wait blocks until topic's version is greater than since or ctx is done.
// It returns the version observed last.
func (b *Broker) Wait(ctx context.Context, topic string, since uint64) (uint64, error) {
	for {
		b.mu.Lock()
		st := b.state(topic)
		version, changed := st.version, st.changed
		b.mu.Unlock()

		if version > since {
			return version, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return version, ctx.Err()
		}
	}
}

// Run relays publishes from other instances until ctx is done. It returns
// immediately for an in-process broker.
func (b *Broker) Run(ctx context.Context) error {
	if b.client == nil {
		return nil
	}

	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	slog.Info("changefeed relay subscribed", "channel", b.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			origin, topic, found := strings.Cut(msg.Payload, "|")
			if !found || origin == b.origin {
				continue
			}
			b.bump(topic)
		}
	}
}

func (b *Broker) bump(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(topic)
	st.version++
	close(st.changed)
	st.changed = make(chan struct{})
}

// state must be called with b.mu held.
func (b *Broker) state(topic string) *topicState {
	st, ok := b.topics[topic]
	if !ok {
		st = &topicState{changed: make(chan struct{})}
		b.topics[topic] = st
	}
	return st
}

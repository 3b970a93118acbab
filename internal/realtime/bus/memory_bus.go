package bus

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/neurobridge-milestones/internal/realtime"
)

// memoryBus delivers in-process only. Slow subscribers drop messages once
// their buffer is full.
type memoryBus struct {
	mu     sync.RWMutex
	subs   map[int]chan realtime.Message
	nextID int
	buffer int
	closed bool
}

func NewMemoryBus(buffer int) Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &memoryBus{subs: map[int]chan realtime.Message{}, buffer: buffer}
}

func (b *memoryBus) Publish(_ context.Context, msg realtime.Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	ch := make(chan realtime.Message, b.buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-ch:
				if onMsg != nil {
					onMsg(m)
				}
			}
		}
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

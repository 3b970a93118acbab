package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/realtime"
)

const (
	defaultTopicPrefix = "milestones"
	redisDialTimeout   = 5 * time.Second
)

// broadcastTopic carries messages that have no channel.
const broadcastTopic = "_all"

var errBusNotReady = errors.New("redis bus not initialized")

// RedisConfig.Channel is a topic prefix: each message is published on
// "<prefix>:<message channel>".
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// ChannelSubscriber narrows a forwarder to a set of message channels on the
// broker side instead of filtering every message locally.
type ChannelSubscriber interface {
	SubscribeChannels(ctx context.Context, channels []string, onMsg func(m realtime.Message)) error
}

type redisBus struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
	owned  bool
}

// NewRedisBus dials Redis and owns the connection; Close shuts it down.
func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisDialTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	b := newRedisBus(log, rdb, cfg.Channel)
	b.owned = true
	return b, nil
}

// NewRedisBusFromClient shares a client owned elsewhere.
func NewRedisBusFromClient(log *logger.Logger, rdb goredis.UniversalClient, prefix string) Bus {
	return newRedisBus(log, rdb, prefix)
}

func newRedisBus(log *logger.Logger, rdb goredis.UniversalClient, prefix string) *redisBus {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return &redisBus{log: log.With("service", "RedisBus", "topic_prefix", prefix), rdb: rdb, prefix: prefix}
}

func (b *redisBus) topic(channel string) string {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = broadcastTopic
	}
	return b.prefix + ":" + channel
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.Message) error {
	if b == nil || b.rdb == nil {
		return errBusNotReady
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return b.rdb.Publish(ctx, b.topic(msg.Channel), raw).Err()
}

// StartForwarder pattern-subscribes to every topic under the prefix.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if b == nil || b.rdb == nil {
		return errBusNotReady
	}
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}
	return b.forward(ctx, b.rdb.PSubscribe(ctx, b.prefix+":*"), onMsg)
}

// SubscribeChannels receives only the named channels plus broadcasts.
func (b *redisBus) SubscribeChannels(ctx context.Context, channels []string, onMsg func(m realtime.Message)) error {
	if b == nil || b.rdb == nil {
		return errBusNotReady
	}
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}
	if len(channels) == 0 {
		return b.StartForwarder(ctx, onMsg)
	}
	topics := []string{b.topic("")}
	for _, c := range channels {
		if strings.TrimSpace(c) != "" {
			topics = append(topics, b.topic(c))
		}
	}
	return b.forward(ctx, b.rdb.Subscribe(ctx, topics...), onMsg)
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(m realtime.Message)) error {
	// the first reply confirms the subscription so publishes after return are not lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	go func() {
		defer sub.Close()
		in := sub.Channel()
		dropped := 0
		for {
			select {
			case <-ctx.Done():
				if dropped > 0 {
					b.log.Warn("Redis forwarder stopped with undecodable payloads", "dropped", dropped)
				}
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				msg, err := decodeMessage(m.Payload)
				if err != nil {
					dropped++
					b.log.Warn("Dropping redis bus payload", "topic", m.Channel, "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func decodeMessage(payload string) (realtime.Message, error) {
	var msg realtime.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return realtime.Message{}, err
	}
	if msg.Event == "" {
		return realtime.Message{}, errors.New("message has no event")
	}
	return msg, nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil || !b.owned {
		return nil
	}
	return b.rdb.Close()
}

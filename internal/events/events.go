// Package events carries chat fan-out and interaction events over Redis.
package events

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	InteractionStream = "interactions:stream"
	InteractionGroup  = "interaction-workers"
)

// ChatChannel is the Pub/Sub channel every member socket of a chat listens on.
func ChatChannel(chatID string) string {
	return "chat:" + chatID + ":messages"
}

// ChatEvent is the payload relayed to chat sockets.
type ChatEvent struct {
	Type      string    `json:"type"` // chat:message | system
	ChatID    string    `json:"chat_id"`
	MessageID string    `json:"message_id,omitempty"`
	SenderID  string    `json:"sender_id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type InteractionEvent struct {
	FromUserID string
	ToUserID   string
	Action     string
	Meta       map[string]any
	At         time.Time
}

var ErrMalformedEvent = errors.New("malformed interaction event")

type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

type InteractionQueue interface {
	EnqueueInteraction(ctx context.Context, ev InteractionEvent) error
}

type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channel, raw).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return b.rdb.Subscribe(ctx, channels...)
}

func (b *RedisBus) EnqueueInteraction(ctx context.Context, ev InteractionEvent) error {
	values, err := EncodeInteraction(ev)
	if err != nil {
		return err
	}
	return b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: InteractionStream,
		Values: values,
	}).Err()
}

// EncodeInteraction flattens an event into stream fields.
func EncodeInteraction(ev InteractionEvent) (map[string]any, error) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	values := map[string]any{
		"from_user_id": ev.FromUserID,
		"to_user_id":   ev.ToUserID,
		"action":       ev.Action,
		"ts_unix_ms":   strconv.FormatInt(ev.At.UnixMilli(), 10),
	}
	if len(ev.Meta) > 0 {
		raw, err := json.Marshal(ev.Meta)
		if err != nil {
			return nil, err
		}
		values["meta"] = string(raw)
	}
	return values, nil
}

// DecodeInteraction is the inverse of EncodeInteraction for stream message values.
func DecodeInteraction(values map[string]any) (InteractionEvent, error) {
	get := func(k string) string {
		v, ok := values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return strings.TrimSpace(s)
	}

	ev := InteractionEvent{
		FromUserID: get("from_user_id"),
		ToUserID:   get("to_user_id"),
		Action:     get("action"),
	}
	if ev.FromUserID == "" || ev.ToUserID == "" || ev.Action == "" {
		return InteractionEvent{}, ErrMalformedEvent
	}

	if ms, err := strconv.ParseInt(get("ts_unix_ms"), 10, 64); err == nil && ms > 0 {
		ev.At = time.UnixMilli(ms).UTC()
	} else {
		ev.At = time.Now().UTC()
	}
	if raw := get("meta"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &ev.Meta); err != nil {
			return InteractionEvent{}, ErrMalformedEvent
		}
	}
	return ev, nil
}

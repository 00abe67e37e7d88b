package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Handler processes one event. A non-nil error leaves the message pending so
// it is retried on the next start of the consumer.
type Handler func(ctx context.Context, event Event) error

// streamClient is the part of the go-redis client the subscriber needs.
type streamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Subscriber consumes one stream as a member of a consumer group.
type Subscriber struct {
	client  streamClient
	cfg     SubscriberConfig
	backoff time.Duration
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	// RetryDelay is the pause after a failed read.
	RetryDelay time.Duration
}

func NewSubscriber(client *redis.Client, cfg SubscriberConfig) *Subscriber {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.BlockDuration == 0 {
		cfg.BlockDuration = 5 * time.Second
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	return &Subscriber{client: client, cfg: cfg, backoff: cfg.RetryDelay}
}

// Start blocks until ctx is cancelled. Messages delivered to this consumer
// before a restart and never acknowledged are handled first.
func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.cfg.Stream, s.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s: %w", s.cfg.Group, err)
	}
	log.Printf("Subscriber started: stream=%s group=%s consumer=%s", s.cfg.Stream, s.cfg.Group, s.cfg.Consumer)

	if err := s.drainPending(ctx); err != nil && ctx.Err() == nil {
		log.Printf("Subscriber %s: pending backlog not drained: %v", s.cfg.Stream, err)
	}

	for ctx.Err() == nil {
		if _, _, err := s.poll(ctx, ">"); err != nil && ctx.Err() == nil {
			log.Printf("Subscriber %s: %v", s.cfg.Stream, err)
			s.wait(ctx)
			continue
		}
		s.backoff = s.cfg.RetryDelay
	}
	log.Printf("Subscriber stopping: %s", s.cfg.Stream)
	return ctx.Err()
}

// drainPending walks this consumer's whole pending entries list, one batch
// at a time, starting after the last entry of the previous batch. Entries
// that fail again stay pending.
func (s *Subscriber) drainPending(ctx context.Context) error {
	after := "0"
	for {
		last, n, err := s.poll(ctx, after)
		if err != nil || n == 0 {
			return err
		}
		after = last
	}
}

// poll reads and handles one batch and returns the id of its last entry and
// the batch size. id ">" asks for new messages and blocks; any other id reads
// pending entries after it.
func (s *Subscriber) poll(ctx context.Context, id string) (string, int, error) {
	block := s.cfg.BlockDuration
	if id != ">" {
		block = -1
	}
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.cfg.Group,
		Consumer: s.cfg.Consumer,
		Streams:  []string{s.cfg.Stream, id},
		Count:    s.cfg.BatchSize,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	last, n := "", 0
	for _, stream := range streams {
		for _, message := range stream.Messages {
			s.handle(ctx, message)
			last = message.ID
			n++
		}
	}
	return last, n, nil
}

func (s *Subscriber) handle(ctx context.Context, message redis.XMessage) {
	event, err := decodeMessage(message.Values)
	if err != nil {
		// A malformed entry can never succeed; ack it so it stops coming back.
		log.Printf("Dropping message %s: %v", message.ID, err)
		s.ack(ctx, message.ID)
		return
	}
	if err := s.cfg.Handler(ctx, event); err != nil {
		log.Printf("Failed to handle %s (%s): %v", message.ID, event.Type, err)
		return
	}
	s.ack(ctx, message.ID)
}

func (s *Subscriber) ack(ctx context.Context, id string) {
	if err := s.client.XAck(ctx, s.cfg.Stream, s.cfg.Group, id).Err(); err != nil {
		log.Printf("Failed to ACK message %s: %v", id, err)
	}
}

// wait sleeps for the current backoff, doubling it up to 30s.
func (s *Subscriber) wait(ctx context.Context) {
	t := time.NewTimer(s.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	if s.backoff *= 2; s.backoff > 30*time.Second {
		s.backoff = 30 * time.Second
	}
}

func decodeMessage(values map[string]any) (Event, error) {
	var event Event
	raw, ok := values["event"].(string)
	if !ok {
		return event, errors.New("missing event field")
	}
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type == "" {
		return event, errors.New("event has no type")
	}
	return event, nil
}

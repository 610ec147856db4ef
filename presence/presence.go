// Package presence tracks online status across horizontally scaled gateway
// instances. Two decoupled primitives: an expiring Redis key as the source
// of truth (absence means offline) and a pub/sub channel for lossy UI-only
// fan-out notifications.
package presence

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	channel   = "presence"
	keyPrefix = "presence:"

	// The key is a dead-man's switch: a crashed instance never refreshes
	// it and the user eventually reads as offline.
	onlineTTL = 24 * time.Hour
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type Event struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) SetOnline(ctx context.Context, userID string) error {
	return s.rdb.Set(ctx, keyPrefix+userID, StatusOnline, onlineTTL).Err()
}

// SetOffline deletes the presence key. Letting the TTL lapse instead is
// externally equivalent.
func (s *Store) SetOffline(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, keyPrefix+userID).Err()
}

func (s *Store) IsOnline(ctx context.Context, userID string) (bool, error) {
	_, err := s.rdb.Get(ctx, keyPrefix+userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, channel, data).Err()
}

// Subscribe returns a channel of presence events published by any instance,
// this one included. The channel closes when ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context) <-chan Event {
	sub := s.rdb.Subscribe(ctx, channel)
	out := make(chan Event)

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				ev, err := parseEvent([]byte(msg.Payload))
				if err != nil {
					log.Printf("Dropping malformed presence event: %v", err)
					continue
				}
				out <- ev
			}
		}
	}()
	return out
}

func parseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Package redisstore persists room aggregates in redis. Each room is one JSON
// value; AtomicUpdate uses WATCH/MULTI so a commit only lands if the value is
// unchanged since it was read, and every commit is published on the room's
// pub/sub channel for subscribers.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/store"
)

const roomIndexKey = "rooms"

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Connect opens and pings a redis client.
func Connect(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func roomKey(code string) string {
	return "room:" + code
}

func updatesChannel(code string) string {
	return "room:" + code + ":updates"
}

func (s *Store) Get(ctx context.Context, code string) (*domain.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read room %s: %w", code, err)
	}
	var room domain.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", code, err)
	}
	return &room, nil
}

func (s *Store) Create(ctx context.Context, room *domain.Room) error {
	payload, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.Code, err)
	}

	ok, err := s.client.SetNX(ctx, roomKey(room.Code), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("create room %s: %w", room.Code, err)
	}
	if !ok {
		return store.ErrCodeTaken
	}

	if err := s.client.SAdd(ctx, roomIndexKey, room.Code).Err(); err != nil {
		return fmt.Errorf("index room %s: %w", room.Code, err)
	}
	s.client.Publish(ctx, updatesChannel(room.Code), payload)
	return nil
}

func (s *Store) AtomicUpdate(ctx context.Context, code string, fn store.UpdateFn) (*domain.Room, error) {
	key := roomKey(code)

	for attempt := 0; attempt < store.MaxUpdateAttempts; attempt++ {
		var committed *domain.Room

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return store.ErrNotFound
			}
			if err != nil {
				return err
			}

			var room domain.Room
			if err := json.Unmarshal(data, &room); err != nil {
				return fmt.Errorf("decode room %s: %w", code, err)
			}

			next, err := fn(&room)
			if err != nil {
				return err
			}

			payload, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("encode room %s: %w", code, err)
			}

			// EXEC fails with TxFailedErr if the watched key changed since GET,
			// which sends us back around the loop to recompute from latest.
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, 0)
				pipe.Publish(ctx, updatesChannel(code), payload)
				return nil
			})
			if err == nil {
				committed = next
			}
			return err
		}, key)

		switch {
		case err == nil:
			return committed, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return nil, err
		}
	}
	return nil, store.ErrTooMuchContention
}

func (s *Store) Subscribe(ctx context.Context, code string, fn func(*domain.Room)) (func(), error) {
	pubsub := s.client.Subscribe(ctx, updatesChannel(code))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to room %s: %w", code, err)
	}

	current, err := s.Get(ctx, code)
	if err != nil {
		pubsub.Close()
		return nil, err
	}

	// One goroutine delivers everything, the read snapshot first, so the
	// initial value can never land after a newer published one.
	go func() {
		fn(current)
		for msg := range pubsub.Channel() {
			var room domain.Room
			if err := json.Unmarshal([]byte(msg.Payload), &room); err != nil {
				logrus.WithError(err).WithField("room", code).Warn("dropping malformed room update")
				continue
			}
			fn(&room)
		}
	}()

	return func() { pubsub.Close() }, nil
}

func (s *Store) ListCodes(ctx context.Context) ([]string, error) {
	codes, err := s.client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return codes, nil
}

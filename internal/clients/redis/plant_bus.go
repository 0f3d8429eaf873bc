package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/loopyhq/loopy-backend/internal/domain/plant"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

// PlantUpdate is the wire payload broadcast to realtime consumers whenever a
// plant state commits. State is nil for deletions.
type PlantUpdate struct {
	UserID uuid.UUID         `json:"user_id"`
	Event  string            `json:"event"`
	Plant  *plant.PlantState `json:"plant,omitempty"`
	At     time.Time         `json:"at"`
}

type PlantBus interface {
	PublishPlantUpdate(ctx context.Context, userID uuid.UUID, event string, state *plant.PlantState) error
	StartForwarder(ctx context.Context, onMsg func(u PlantUpdate)) error
	Close() error
}

type plantBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewPlantBus(log *logger.Logger) (PlantBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "plant_updates"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &plantBus{
		log:     log.With("service", "RedisPlantBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *plantBus) PublishPlantUpdate(ctx context.Context, userID uuid.UUID, event string, state *plant.PlantState) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis plant bus not initialized")
	}
	raw, err := json.Marshal(PlantUpdate{
		UserID: userID,
		Event:  event,
		Plant:  state,
		At:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *plantBus) StartForwarder(ctx context.Context, onMsg func(u PlantUpdate)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis plant bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		chMsgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-chMsgs:
				if !ok {
					return
				}
				var u PlantUpdate
				if err := json.Unmarshal([]byte(m.Payload), &u); err != nil {
					b.log.Warn("failed to decode plant update", "error", err)
					continue
				}
				onMsg(u)
			}
		}
	}()
	return nil
}

func (b *plantBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/messaging"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes each loan event as JSON on a redis pub/sub channel
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	logger  coreport.Logger
}

// NewRedisPublisher creates a publisher on channel. The client stays owned by the caller.
func NewRedisPublisher(client redis.UniversalClient, channel string, logger coreport.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

var _ messaging.EventPublisher = (*RedisPublisher)(nil)

// Publish sends the events in order in one pipeline
func (p *RedisPublisher) Publish(ctx context.Context, events []*entity.LoanEvent) error {
	if len(events) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode %s event for loan %d: %w", event.Type, event.LoanID, err)
		}
		pipe.Publish(ctx, p.channel, payload)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}

	p.logger.Debug("Loan events published", map[string]any{
		"channel": p.channel,
		"count":   len(events),
	})
	return nil
}

// Close is a no-op; the redis client is shared
func (p *RedisPublisher) Close() error {
	return nil
}

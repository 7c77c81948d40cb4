package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"swapLogger/internal/model"
)

// Publisher publishes swap and error records to Redis channels. Records are queued
// on a pipeline and sent on Flush, once per block.
type Publisher struct {
	client  goredis.UniversalClient
	channel string

	mu   sync.Mutex
	pipe goredis.Pipeliner
}

func NewPublisher(ctx context.Context, addr, channel string) (*Publisher, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewPublisherWithClient(client, channel), nil
}

// NewPublisherWithClient wraps an existing client.
func NewPublisherWithClient(client goredis.UniversalClient, channel string) *Publisher {
	if channel == "" {
		channel = "swaps"
	}
	return &Publisher{client: client, channel: channel}
}

// SwapChannel is where swap records are published.
func (p *Publisher) SwapChannel() string {
	return p.channel
}

// ErrorChannel is where error records are published.
func (p *Publisher) ErrorChannel() string {
	return p.channel + ":errors"
}

func (p *Publisher) PutSwap(ctx context.Context, record model.SwapRecord) error {
	return p.queue(ctx, p.SwapChannel(), record)
}

func (p *Publisher) PutError(ctx context.Context, record model.ErrorRecord) error {
	return p.queue(ctx, p.ErrorChannel(), record)
}

func (p *Publisher) queue(ctx context.Context, channel string, record interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pipe == nil {
		p.pipe = p.client.Pipeline()
	}
	p.pipe.Publish(ctx, channel, data)
	return nil
}

func (p *Publisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	pipe := p.pipe
	p.pipe = nil
	p.mu.Unlock()

	if pipe == nil || pipe.Len() == 0 {
		return nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish records: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if err := p.Flush(context.Background()); err != nil {
		p.client.Close()
		return err
	}
	return p.client.Close()
}

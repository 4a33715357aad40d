package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avraam311/image-compressor/internal/models"

	"github.com/wb-go/wbf/retry"
)

type Producer interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key, value []byte) error
}

// Publisher sends compression events to the journal topic, keyed by event id.
type Publisher struct {
	prod     Producer
	strategy retry.Strategy
}

func NewPublisher(prod Producer, strategy retry.Strategy) *Publisher {
	return &Publisher{
		prod:     prod,
		strategy: strategy,
	}
}

func (p *Publisher) Publish(ctx context.Context, event *models.CompressionEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events/publisher.go - failed to marshal event into json - %w", err)
	}

	if err := p.prod.SendWithRetry(ctx, p.strategy, []byte(event.ID.String()), value); err != nil {
		return fmt.Errorf("events/publisher.go - failed to send event to kafka - %w", err)
	}

	return nil
}

package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

const (
	minFetchBackoff = 100 * time.Millisecond
	maxFetchBackoff = 30 * time.Second
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Kafka struct {
	Cons Reader
}

// New builds a group consumer. Offsets are committed explicitly through
// Commit once a message has been handled.
func New(brokers []string, topic string, groupID string) *Kafka {
	return &Kafka{
		Cons: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

// Consume fetches messages into out until ctx is done or the reader is
// closed, then closes out. After a failed fetch it waits strategy.Delay,
// growing by strategy.Backoff while the failures continue.
func (k *Kafka) Consume(ctx context.Context, out chan<- kafka.Message, strategy retry.Strategy) {
	defer close(out)

	delay := fetchBackoff(strategy.Delay)
	for {
		msg, err := k.Cons.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			zlog.Logger.Warn().Err(err).Dur("retry_in", delay).Msg("kafka.go - failed to fetch message from kafka")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			if strategy.Backoff > 1 {
				delay = fetchBackoff(time.Duration(float64(delay) * strategy.Backoff))
			}
			continue
		}
		delay = fetchBackoff(strategy.Delay)

		if len(msg.Value) == 0 && len(msg.Key) == 0 {
			continue
		}

		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func fetchBackoff(d time.Duration) time.Duration {
	if d < minFetchBackoff {
		return minFetchBackoff
	}
	if d > maxFetchBackoff {
		return maxFetchBackoff
	}
	return d
}

func (k *Kafka) Commit(ctx context.Context, msg kafka.Message) error {
	return k.Cons.CommitMessages(ctx, msg)
}

func (k *Kafka) Close() error {
	return k.Cons.Close()
}

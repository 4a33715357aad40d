package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/avraam311/image-compressor/internal/models"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/segmentio/kafka-go"
)

type Consumer interface {
	Consume(ctx context.Context, out chan<- kafka.Message, strategy retry.Strategy)
	Commit(ctx context.Context, msg kafka.Message) error
}

type Repository interface {
	SaveCompression(context.Context, *models.CompressionEvent) error
}

type Worker struct {
	cons     Consumer
	repo     Repository
	count    int
	strategy retry.Strategy
}

func New(cons Consumer, repo Repository, count int, strategy retry.Strategy) *Worker {
	if count < 1 {
		count = 1
	}

	return &Worker{
		cons:     cons,
		repo:     repo,
		count:    count,
		strategy: strategy,
	}
}

// Run persists journal events until ctx is done or the consumer stops.
// A message that still fails after the retry strategy is exhausted stops Run
// with an error. Its offset is never committed, so the group redelivers it
// and everything after it on that partition once the worker restarts.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consChan := make(chan kafka.Message)
	go w.cons.Consume(ctx, consChan, w.strategy)

	offsets := newOffsetTracker(w.cons)
	jobs := make(chan kafka.Message)
	go func() {
		defer close(jobs)
		for msg := range consChan {
			offsets.track(msg)
			select {
			case jobs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		runErr  error
	)
	wg.Add(w.count)
	for i := 0; i < w.count; i++ {
		go func(id int) {
			defer wg.Done()
			for msg := range jobs {
				if err := w.process(ctx, id, msg, offsets); err != nil {
					errOnce.Do(func() {
						runErr = err
						cancel()
					})
					return
				}
			}
		}(i)
	}

	wg.Wait()
	return runErr
}

func (w *Worker) process(ctx context.Context, id int, msg kafka.Message, offsets *offsetTracker) error {
	event, err := w.handle(ctx, msg)
	if err != nil {
		if !isPoison(err) {
			if ctx.Err() != nil {
				return nil
			}
			zlog.Logger.Error().Err(err).Int("worker", id).Int("partition", msg.Partition).Int64("offset", msg.Offset).Msg("worker.go - giving up on compression event")
			return fmt.Errorf("worker.go - partition %d offset %d - %w", msg.Partition, msg.Offset, err)
		}
		// events that never decode are committed so they don't block the partition
		zlog.Logger.Warn().Err(err).Int("worker", id).Int64("offset", msg.Offset).Msg("worker.go - skipping undecodable compression event")
	}

	if err := offsets.done(ctx, msg); err != nil {
		zlog.Logger.Warn().Err(err).Int("worker", id).Int64("offset", msg.Offset).Msg("worker.go - failed to commit message")
		return nil
	}
	if event != nil {
		zlog.Logger.Info().Int("worker", id).Str("event_id", event.ID.String()).Msg("compression event saved")
	}
	return nil
}

type poisonError struct{ err error }

func (e *poisonError) Error() string { return e.err.Error() }
func (e *poisonError) Unwrap() error { return e.err }

func isPoison(err error) bool {
	var pe *poisonError
	return errors.As(err, &pe)
}

func (w *Worker) handle(ctx context.Context, msg kafka.Message) (*models.CompressionEvent, error) {
	event := &models.CompressionEvent{}
	if err := json.Unmarshal(msg.Value, event); err != nil {
		return nil, &poisonError{fmt.Errorf("worker.go - failed to unmarshal message into struct - %w", err)}
	}

	err := retry.Do(func() error {
		return w.repo.SaveCompression(ctx, event)
	}, w.strategy)
	if err != nil {
		return nil, fmt.Errorf("worker.go - failed to save compression - %w", err)
	}

	return event, nil
}

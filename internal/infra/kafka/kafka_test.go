package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

var fastFetchRetry = retry.Strategy{Attempts: 3, Delay: minFetchBackoff, Backoff: 1}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	errs      []error
	committed []kafka.Message
	closed    bool
	fetches   int
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	f.fetches++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		f.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(f.queue) > 0 {
		msg := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestKafka_ConsumeSkipsEmptyAndStopsOnCancel(t *testing.T) {
	reader := &fakeReader{
		errs: []error{errors.New("transient")},
		queue: []kafka.Message{
			{Key: []byte("a"), Value: []byte("1")},
			{},
			{Key: []byte("b"), Value: []byte("2")},
		},
	}
	k := &Kafka{Cons: reader}

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan kafka.Message)
	go k.Consume(ctx, out, fastFetchRetry)

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case msg := <-out:
			got = append(got, string(msg.Key))
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for message")
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)

	cancel()
	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("out was not closed after cancel")
	}
}

func TestKafka_ConsumeStopsOnEOF(t *testing.T) {
	k := &Kafka{Cons: &fakeReader{errs: []error{io.EOF}}}

	out := make(chan kafka.Message)
	done := make(chan struct{})
	go func() {
		k.Consume(context.Background(), out, fastFetchRetry)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Consume did not return on EOF")
	}
}

func TestKafka_CommitAndClose(t *testing.T) {
	reader := &fakeReader{}
	k := &Kafka{Cons: reader}

	require.NoError(t, k.Commit(context.Background(), kafka.Message{Offset: 7}))
	require.NoError(t, k.Close())

	require.Len(t, reader.committed, 1)
	assert.Equal(t, int64(7), reader.committed[0].Offset)
	assert.True(t, reader.closed)
}

func TestKafka_ConsumeWaitsBetweenFailedFetches(t *testing.T) {
	tests := []struct {
		name     string
		strategy retry.Strategy
		window   time.Duration
		maxCalls int
	}{
		{
			name:     "configured delay",
			strategy: retry.Strategy{Attempts: 3, Delay: 150 * time.Millisecond, Backoff: 1},
			window:   500 * time.Millisecond,
			maxCalls: 5,
		},
		{
			name:     "zero delay still backs off",
			strategy: retry.Strategy{},
			window:   350 * time.Millisecond,
			maxCalls: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := make([]error, 1000)
			for i := range errs {
				errs[i] = errors.New("broker unavailable")
			}
			reader := &fakeReader{errs: errs}
			k := &Kafka{Cons: reader}

			ctx, cancel := context.WithTimeout(context.Background(), tt.window)
			defer cancel()
			out := make(chan kafka.Message)
			done := make(chan struct{})
			go func() {
				k.Consume(ctx, out, tt.strategy)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(tt.window + time.Second):
				t.Fatal("Consume did not return after ctx was done")
			}

			reader.mu.Lock()
			defer reader.mu.Unlock()
			assert.GreaterOrEqual(t, reader.fetches, 2)
			assert.LessOrEqual(t, reader.fetches, tt.maxCalls)
		})
	}
}

func TestFetchBackoff(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{in: 0, want: minFetchBackoff},
		{in: time.Second, want: time.Second},
		{in: time.Hour, want: maxFetchBackoff},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, fetchBackoff(tt.in))
		})
	}
}

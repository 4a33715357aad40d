package worker

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

type committer interface {
	Commit(ctx context.Context, msg kafka.Message) error
}

type pendingOffset struct {
	msg  kafka.Message
	done bool
}

// offsetTracker commits a partition only up to its lowest unfinished offset.
// Kafka stores one position per partition, so committing a later message
// would also skip any earlier one that is still in flight or has failed.
type offsetTracker struct {
	mu      sync.Mutex
	cons    committer
	pending map[int][]*pendingOffset
}

func newOffsetTracker(cons committer) *offsetTracker {
	return &offsetTracker{
		cons:    cons,
		pending: map[int][]*pendingOffset{},
	}
}

// track must be called in fetch order, before msg is handed to a goroutine.
func (t *offsetTracker) track(msg kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[msg.Partition] = append(t.pending[msg.Partition], &pendingOffset{msg: msg})
}

// done marks msg finished and commits the longest finished prefix of its
// partition, if any. The commit runs under the lock so commits for a
// partition never go backwards.
func (t *offsetTracker) done(ctx context.Context, msg kafka.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	queue := t.pending[msg.Partition]
	for _, p := range queue {
		if p.msg.Offset == msg.Offset {
			p.done = true
			break
		}
	}

	n := 0
	for n < len(queue) && queue[n].done {
		n++
	}
	if n == 0 {
		return nil
	}

	last := queue[n-1].msg
	t.pending[msg.Partition] = queue[n:]
	return t.cons.Commit(ctx, last)
}

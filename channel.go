// Package stdoutchan provides asynchronous line-oriented writing to stdout and
// stderr. Sends never block; each stream is drained by a background writer
// goroutine and Close waits for everything enqueued to reach the output.
package stdoutchan

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jmorran/stdoutchan/internal/linebuf"
	"github.com/jmorran/stdoutchan/internal/queue"
	"github.com/jmorran/stdoutchan/ratelimit"
)

// message is a queue element: either a value to render or a close sentinel.
type message[T any] struct {
	value    T
	sentinel bool
}

// stream owns one output: an unbounded queue drained by exactly one writer goroutine.
type stream[T any] struct {
	label string
	w     io.Writer
	queue *queue.Queue[message[T]]
}

// Channel writes values one per line to a stdout stream and a stderr stream.
// Send and SendErr enqueue without blocking; a writer goroutine per stream
// renders and writes in FIFO order. Safe for concurrent use.
type Channel[T any] struct {
	name    string
	out     *stream[T]
	errOut  *stream[T]
	logger  *zap.Logger
	limiter *ratelimit.Limiter

	group     errgroup.Group
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Channel at construction time.
type Option[T any] func(*Channel[T])

// WithWriters replaces the default os.Stdout/os.Stderr destinations.
// Use with Recorder in tests.
func WithWriters[T any](out, errOut io.Writer) Option[T] {
	return func(c *Channel[T]) {
		c.out.w = out
		c.errOut.w = errOut
	}
}

// WithLogger attaches a logger for diagnostics (dropped sends, writer errors).
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(c *Channel[T]) {
		c.logger = logger
	}
}

// WithRateLimiter paces writes: each line acquires a slot before being written.
// Draining on Close still completes; acquisition uses a background context.
func WithRateLimiter[T any](l *ratelimit.Limiter) Option[T] {
	return func(c *Channel[T]) {
		c.limiter = l
	}
}

// WithName sets the channel label used in metrics and log fields.
// Defaults to a fresh UUID.
func WithName[T any](name string) Option[T] {
	return func(c *Channel[T]) {
		c.name = name
	}
}

// New creates a Channel and starts its writer goroutines.
// The caller must call Close to flush and release them.
func New[T any](opts ...Option[T]) *Channel[T] {
	c := &Channel[T]{
		name:   uuid.NewString(),
		out:    &stream[T]{label: "stdout", w: os.Stdout, queue: queue.New[message[T]]()},
		errOut: &stream[T]{label: "stderr", w: os.Stderr, queue: queue.New[message[T]]()},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.group.Go(func() error { return c.drain(c.out) })
	c.group.Go(func() error { return c.drain(c.errOut) })
	return c
}

// Name returns the channel label used in metrics and log fields.
func (c *Channel[T]) Name() string {
	return c.name
}

// Send enqueues a value for the stdout stream. Never blocks.
// After Close the value is dropped.
func (c *Channel[T]) Send(v T) {
	c.send(c.out, v)
}

// SendErr enqueues a value for the stderr stream. Never blocks.
// After Close the value is dropped.
func (c *Channel[T]) SendErr(v T) {
	c.send(c.errOut, v)
}

func (c *Channel[T]) send(s *stream[T], v T) {
	if c.closed.Load() {
		sendsDroppedTotal.WithLabelValues(c.name, s.label).Inc()
		if c.logger != nil {
			c.logger.Debug("send after close dropped",
				zap.String("channel", c.name), zap.String("stream", s.label))
		}
		return
	}
	s.queue.Push(message[T]{value: v})
	queueDepth.WithLabelValues(c.name, s.label).Set(float64(s.queue.Len()))
}

// Close flushes both streams and waits for the writer goroutines to finish.
// Everything sent before Close is written before Close returns. Idempotent;
// repeated calls return the first error observed.
func (c *Channel[T]) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.out.queue.Push(message[T]{sentinel: true})
		c.errOut.queue.Push(message[T]{sentinel: true})
		c.closeErr = c.group.Wait()
		if c.closeErr != nil && c.logger != nil {
			c.logger.Error("channel close", zap.String("channel", c.name), zap.Error(c.closeErr))
		}
	})
	return c.closeErr
}

// Closed reports whether Close has been called.
func (c *Channel[T]) Closed() bool {
	return c.closed.Load()
}

// Depths returns the number of queued items per stream. For health reporting.
func (c *Channel[T]) Depths() (stdout, stderr int) {
	return c.out.queue.Len(), c.errOut.queue.Len()
}

// drain is the writer loop for one stream. It exits on the close sentinel or
// the first write failure; a failure surfaces from Close.
func (c *Channel[T]) drain(s *stream[T]) error {
	var buf linebuf.Buffer
	for {
		msg, err := s.queue.Pop(context.Background())
		if err != nil {
			return err
		}
		queueDepth.WithLabelValues(c.name, s.label).Set(float64(s.queue.Len()))
		if msg.sentinel {
			return nil
		}
		if c.limiter != nil {
			if err := c.limiter.Acquire(context.Background()); err != nil {
				return fmt.Errorf("acquire rate limit slot for %s: %w", s.label, err)
			}
		}
		line := buf.WriteLine(msg.value)
		if _, err := s.w.Write(line); err != nil {
			writeErrorsTotal.WithLabelValues(c.name, s.label).Inc()
			return fmt.Errorf("write %s: %w", s.label, err)
		}
		linesWrittenTotal.WithLabelValues(c.name, s.label).Inc()
		bytesWrittenTotal.WithLabelValues(c.name, s.label).Add(float64(len(line)))
	}
}

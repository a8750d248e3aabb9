package qmon

import (
	"errors"
	"fmt"
	"sync"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after being closed.
var ErrChannelSinkClosed = errors.New("qmon: channel sink closed")

// ReadingBatchFunc handles one archived batch of readings.
type ReadingBatchFunc func(batch []Reading) error

// NewCallbackSink adapts a ReadingBatchFunc into a full ArchiveSink so callers
// can plug arbitrary functions without defining structs.
func NewCallbackSink(name string, fn ReadingBatchFunc) ArchiveSink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes batches via a channel; it returns the sink, the read-only channel,
// and a close function that the caller should invoke during shutdown.
func NewChannelSink(name string, buffer int) (ArchiveSink, <-chan []Reading, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan []Reading, buffer)
	s := &channelSink{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   ReadingBatchFunc
}

func (s *callbackSink) WriteBatch(batch []Reading) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if len(batch) == 0 {
		return nil
	}
	return s.fn(batch)
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	ch     chan []Reading
	closed chan struct{}
	once   sync.Once
}

func (s *channelSink) WriteBatch(batch []Reading) error {
	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	default:
	}

	if len(batch) == 0 {
		return nil
	}

	// Hand the stage its own copy; the pipeline reuses batch slices.
	out := make([]Reading, len(batch))
	copy(out, batch)

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	case s.ch <- out:
		return nil
	}
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) close() {
	s.once.Do(func() {
		close(s.closed)
		close(s.ch)
	})
}

package encoder

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/tinylib/msgp/msgp"

	"github.com/stleox/spanvault/pkg/config"
	"github.com/stleox/spanvault/pkg/store"
)

// FlushFunc receives one flushed payload and its trace count.
type FlushFunc func(payload []byte, traces int)

// Buffer accumulates encoded traces into one outgoing payload, capped by
// size. Flush yields a msgpack array of traces (each itself an array of
// span maps), the shape the intake endpoint consumes.
type Buffer struct {
	enc *Encoder

	mu    sync.Mutex
	buf   []byte
	count int

	maxPayload int
	maxTrace   int

	cron     *cron.Cron
	running  bool
	muRun    sync.Mutex
	interval time.Duration
	flush    FlushFunc
}

type BufferOptions struct {
	// MaxPayloadBytes caps the accumulated payload; zero means
	// config.DefaultMaxPayloadBytes.
	MaxPayloadBytes int
	// MaxTraceBytes caps one encoded trace; zero means
	// config.DefaultMaxTraceBytes.
	MaxTraceBytes int
	// FlushInterval is the background flush cadence; zero means
	// config.DefaultFlushInterval.
	FlushInterval time.Duration
}

func NewBuffer(enc *Encoder, opts BufferOptions) *Buffer {
	maxPayload := opts.MaxPayloadBytes
	if maxPayload <= 0 {
		maxPayload = config.DefaultMaxPayloadBytes
	}
	maxTrace := opts.MaxTraceBytes
	if maxTrace <= 0 {
		maxTrace = config.DefaultMaxTraceBytes
	}
	interval := opts.FlushInterval
	if interval <= 0 {
		interval = config.DefaultFlushInterval
	}
	return &Buffer{
		enc:        enc,
		maxPayload: maxPayload,
		maxTrace:   maxTrace,
		interval:   interval,
	}
}

// Put encodes trace (with the encoder's full pin discipline) and appends
// the bytes to the pending payload. The trace is not added on error.
func (b *Buffer) Put(trace []store.Handle) error {
	bs, err := b.enc.Encode(trace)
	if err != nil {
		return err
	}
	if len(bs) > b.maxTrace {
		return errors.Wrapf(ErrTraceTooLarge, "%d bytes, cap %d", len(bs), b.maxTrace)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.buf)+len(bs) > b.maxPayload {
		return errors.Wrapf(ErrBufferFull, "%d traces pending", b.count)
	}
	b.buf = append(b.buf, bs...)
	b.count++
	return nil
}

// Flush returns the pending payload as one msgpack array of traces plus
// the trace count, and resets the buffer. An empty buffer yields (nil, 0).
func (b *Buffer) Flush() ([]byte, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil, 0
	}

	out := msgp.AppendArrayHeader(make([]byte, 0, len(b.buf)+5), uint32(b.count))
	out = append(out, b.buf...)
	n := b.count

	b.buf = nil
	b.count = 0
	return out, n
}

// Count returns the number of traces pending flush.
func (b *Buffer) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// flushTask adapts the periodic flush to a cron job.
type flushTask struct {
	b *Buffer
}

func (t *flushTask) Run() {
	payload, n := t.b.Flush()
	if n == 0 {
		return
	}
	t.b.flush(payload, n)
}

// StartFlusher schedules a background task that flushes the buffer every
// interval and hands non-empty payloads to fn. Idempotent while running.
func (b *Buffer) StartFlusher(fn FlushFunc) {
	b.muRun.Lock()
	defer b.muRun.Unlock()
	if b.running {
		return
	}
	b.flush = fn

	c := cron.New()
	if _, err := c.AddJob(fmt.Sprintf("@every %s", b.interval), &flushTask{b: b}); err != nil {
		logrus.WithError(err).Warn("spanvault couldn't schedule the payload flush")
		return
	}
	c.Start()

	b.cron = c
	b.running = true
	logrus.Debugf("flusher started, flushing every %s", b.interval)
}

// StopFlusher halts the background flush. Pending traces stay buffered
// for a manual Flush or the next StartFlusher. Idempotent while stopped.
func (b *Buffer) StopFlusher() {
	b.muRun.Lock()
	defer b.muRun.Unlock()
	if !b.running {
		return
	}

	b.cron.Stop()
	b.cron = nil
	b.running = false
	logrus.Debug("flusher stopped")
}

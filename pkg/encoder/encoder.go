package encoder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tinylib/msgp/msgp"

	"github.com/stleox/spanvault/pkg/gc"
	"github.com/stleox/spanvault/pkg/store"
)

// Encoder serializes ordered batches of span handles into the compact
// msgpack wire form. A trace encodes as an array of span maps; each span
// map carries 9 mandatory keys plus type/meta/metrics when non-empty.
// Any field equal to its empty sentinel (zero id, zero timing, empty
// string) encodes msgpack nil instead of its literal value; the error
// flag alone always encodes a literal 0 or 1.
type Encoder struct {
	store   *store.Store
	gc      *gc.GC
	metrics *metrics
}

// New creates an encoder over st, pinning through g while reading.
// reg may be nil to skip metric registration.
func New(st *store.Store, g *gc.GC, reg prometheus.Registerer) *Encoder {
	return &Encoder{
		store:   st,
		gc:      g,
		metrics: newMetrics(reg),
	}
}

// Encode serializes trace in input order. Every handle is pinned before
// the first read and released when the call returns, whatever the
// outcome, so the gc cannot reclaim a batch member mid-encode. A dead
// handle fails the whole call with ErrUnknownHandle; no partial buffer
// is returned.
func (e *Encoder) Encode(trace []store.Handle) ([]byte, error) {
	for _, h := range trace {
		e.gc.Keep(h)
	}
	defer func() {
		for _, h := range trace {
			e.gc.Release(h)
		}
	}()

	buf := msgp.AppendArrayHeader(make([]byte, 0, 32*len(trace)+8), uint32(len(trace)))
	var err error
	for _, h := range trace {
		if buf, err = e.appendSpan(buf, h); err != nil {
			return nil, err
		}
	}

	e.metrics.traces.Inc()
	e.metrics.spans.Add(float64(len(trace)))
	e.metrics.bytes.Add(float64(len(buf)))
	return buf, nil
}

// appendSpan encodes one span under the store lock. The map length is
// computed up front: 9 mandatory keys, plus one each for a non-empty
// type, meta and metrics.
func (e *Encoder) appendSpan(buf []byte, h store.Handle) ([]byte, error) {
	err := e.store.View(h, func(sp *store.Span) error {
		size := uint32(9)
		if sp.Type != "" {
			size++
		}
		if len(sp.Meta) > 0 {
			size++
		}
		if len(sp.Metrics) > 0 {
			size++
		}
		buf = msgp.AppendMapHeader(buf, size)

		buf = msgp.AppendString(buf, "trace_id")
		buf = appendID(buf, sp.TraceID)

		buf = msgp.AppendString(buf, "parent_id")
		buf = appendID(buf, sp.ParentID)

		buf = msgp.AppendString(buf, "span_id")
		buf = appendID(buf, sp.SpanID)

		buf = msgp.AppendString(buf, "service")
		buf = appendStr(buf, sp.Service)

		buf = msgp.AppendString(buf, "resource")
		buf = appendStr(buf, sp.Resource)

		buf = msgp.AppendString(buf, "name")
		buf = appendStr(buf, sp.Name)

		buf = msgp.AppendString(buf, "error")
		flag := 0
		if sp.Error != 0 {
			flag = 1
		}
		buf = msgp.AppendInt(buf, flag)

		buf = msgp.AppendString(buf, "start")
		buf = appendTiming(buf, sp.Start)

		buf = msgp.AppendString(buf, "duration")
		buf = appendTiming(buf, sp.Duration)

		if sp.Type != "" {
			buf = msgp.AppendString(buf, "type")
			buf = msgp.AppendString(buf, sp.Type)
		}

		if len(sp.Meta) > 0 {
			buf = msgp.AppendString(buf, "meta")
			buf = msgp.AppendMapHeader(buf, uint32(len(sp.Meta)))
			for k, v := range sp.Meta {
				buf = msgp.AppendString(buf, k)
				buf = appendStr(buf, v)
			}
		}

		if len(sp.Metrics) > 0 {
			buf = msgp.AppendString(buf, "metrics")
			buf = msgp.AppendMapHeader(buf, uint32(len(sp.Metrics)))
			for k, v := range sp.Metrics {
				buf = msgp.AppendString(buf, k)
				buf = msgp.AppendFloat64(buf, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// zero ids are "unset", not real ids
func appendID(b []byte, v uint64) []byte {
	if v == 0 {
		return msgp.AppendNil(b)
	}
	return msgp.AppendUint64(b, v)
}

func appendStr(b []byte, s string) []byte {
	if s == "" {
		return msgp.AppendNil(b)
	}
	return msgp.AppendString(b, s)
}

// zero start/duration are "unset" too; negative values keep their sign
func appendTiming(b []byte, v int64) []byte {
	if v == 0 {
		return msgp.AppendNil(b)
	}
	return msgp.AppendInt64(b, v)
}

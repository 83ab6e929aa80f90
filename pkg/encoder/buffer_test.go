package encoder

import (
	"sync"
	"testing"
	"time"

	r "github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/stleox/spanvault/pkg/store"
)

func mockTrace(st *store.Store, spans int) []store.Handle {
	trace := make([]store.Handle, 0, spans)
	for i := 0; i < spans; i++ {
		h := st.Create()
		_ = st.SetService(h, "web")
		_ = st.SetSpanID(h, uint64(i)+1)
		trace = append(trace, h)
	}
	return trace
}

func TestBuffer_PutFlush(t *testing.T) {
	st, _, enc := mockWorld()
	buf := NewBuffer(enc, BufferOptions{})

	r.NoError(t, buf.Put(mockTrace(st, 2)))
	r.NoError(t, buf.Put(mockTrace(st, 3)))
	r.Equal(t, 2, buf.Count())

	payload, n := buf.Flush()
	r.Equal(t, 2, n)

	// payload is an array of traces, each an array of span maps
	outer, b, err := msgp.ReadArrayHeaderBytes(payload)
	r.NoError(t, err)
	r.Equal(t, uint32(2), outer)

	inner, b, err := msgp.ReadArrayHeaderBytes(b)
	r.NoError(t, err)
	r.Equal(t, uint32(2), inner)
	for i := 0; i < 2; i++ {
		_, _, b = decodeSpan(t, b)
	}

	inner, b, err = msgp.ReadArrayHeaderBytes(b)
	r.NoError(t, err)
	r.Equal(t, uint32(3), inner)
	for i := 0; i < 3; i++ {
		_, _, b = decodeSpan(t, b)
	}
	r.Empty(t, b)

	// flushed clean
	r.Equal(t, 0, buf.Count())
	payload, n = buf.Flush()
	r.Nil(t, payload)
	r.Equal(t, 0, n)
}

func TestBuffer_PutDeadHandle(t *testing.T) {
	st, _, enc := mockWorld()
	buf := NewBuffer(enc, BufferOptions{})

	h := st.Create()
	st.Remove(h)
	err := buf.Put([]store.Handle{h})
	r.ErrorIs(t, err, store.ErrUnknownHandle)
	r.Equal(t, 0, buf.Count())
}

func TestBuffer_TraceTooLarge(t *testing.T) {
	st, _, enc := mockWorld()
	buf := NewBuffer(enc, BufferOptions{MaxTraceBytes: 16})

	err := buf.Put(mockTrace(st, 4))
	r.ErrorIs(t, err, ErrTraceTooLarge)
	r.Equal(t, 0, buf.Count())
}

func TestBuffer_Full(t *testing.T) {
	st, _, enc := mockWorld()

	one, err := enc.Encode(mockTrace(st, 1))
	r.NoError(t, err)

	// room for exactly one encoded trace
	buf := NewBuffer(enc, BufferOptions{MaxPayloadBytes: len(one)})
	r.NoError(t, buf.Put(mockTrace(st, 1)))
	err = buf.Put(mockTrace(st, 1))
	r.ErrorIs(t, err, ErrBufferFull)
	r.Equal(t, 1, buf.Count())

	// a flush drains the payload and makes room again
	_, n := buf.Flush()
	r.Equal(t, 1, n)
	r.NoError(t, buf.Put(mockTrace(st, 1)))
}

func TestBuffer_Flusher(t *testing.T) {
	st, _, enc := mockWorld()
	buf := NewBuffer(enc, BufferOptions{FlushInterval: 10 * time.Millisecond})

	var mu sync.Mutex
	flushed := 0
	buf.StartFlusher(func(payload []byte, traces int) {
		mu.Lock()
		flushed += traces
		mu.Unlock()
	})
	buf.StartFlusher(func([]byte, int) { t.Fatal("second flusher scheduled") })
	defer buf.StopFlusher()

	r.NoError(t, buf.Put(mockTrace(st, 2)))
	// cron @every rounds sub-second intervals up to 1s
	r.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return flushed == 1
	}, 5*time.Second, 20*time.Millisecond)
	r.Equal(t, 0, buf.Count())

	buf.StopFlusher()
	buf.StopFlusher()

	// stopped: traces stay buffered for manual flush
	r.NoError(t, buf.Put(mockTrace(st, 1)))
	time.Sleep(50 * time.Millisecond)
	r.Equal(t, 1, buf.Count())
}

package gc

import (
	"testing"
	"time"

	r "github.com/stretchr/testify/require"

	"github.com/stleox/spanvault/pkg/store"
)

func mockGC(interval time.Duration) (*store.Store, *GC) {
	st := store.New(nil)
	return st, New(st, Options{SweepInterval: interval})
}

func TestGC_SweepRemovesGarbage(t *testing.T) {
	st, g := mockGC(0)

	h := st.Create()
	g.Recycle(h)
	r.True(t, st.Contains(h))

	g.Run()
	r.False(t, st.Contains(h))

	// the queue is drained, a second sweep is a no-op
	g.Run()
	r.Equal(t, 0, st.Len())
}

func TestGC_SweepSkipsUntouchedSpans(t *testing.T) {
	st, g := mockGC(0)

	kept := st.Create()
	doomed := st.Create()
	g.Recycle(doomed)

	g.Run()
	r.True(t, st.Contains(kept))
	r.False(t, st.Contains(doomed))
}

func TestGC_RecycleUnknownHandle(t *testing.T) {
	st, g := mockGC(0)

	g.Recycle(store.Handle(12345))
	g.Run()
	r.Equal(t, 0, st.Len())
	r.Empty(t, g.garbage)
}

func TestGC_PinBlocksSweep(t *testing.T) {
	st, g := mockGC(0)

	h := st.Create()
	g.Recycle(h)
	g.Keep(h)

	g.Run()
	r.True(t, st.Contains(h), "pinned handle must survive the sweep")

	// still queued: a later sweep after release reclaims it
	g.Release(h)
	g.Run()
	r.False(t, st.Contains(h))
}

func TestGC_PinRefcount(t *testing.T) {
	st, g := mockGC(0)

	h := st.Create()
	g.Recycle(h)

	// two overlapping readers; the first release must not drop protection
	g.Keep(h)
	g.Keep(h)
	g.Release(h)
	g.Run()
	r.True(t, st.Contains(h))

	g.Release(h)
	g.Run()
	r.False(t, st.Contains(h))
}

func TestGC_ReleaseUnpinnedNoop(t *testing.T) {
	st, g := mockGC(0)

	h := st.Create()
	g.Release(h)
	r.Empty(t, g.pinned)

	// a no-op release must not leave a negative count behind
	g.Keep(h)
	g.Recycle(h)
	g.Run()
	r.True(t, st.Contains(h))
	g.Release(h)
	g.Run()
	r.False(t, st.Contains(h))
}

func TestGC_StartStopIdempotent(t *testing.T) {
	st, g := mockGC(10 * time.Millisecond)

	g.Start()
	g.Start() // no second scheduler
	defer g.Stop()

	h := st.Create()
	g.Recycle(h)
	// cron @every rounds sub-second intervals up to 1s
	r.Eventually(t, func() bool { return !st.Contains(h) },
		5*time.Second, 20*time.Millisecond)

	g.Stop()
	g.Stop()

	// stopped: garbage is abandoned until the next Start
	h2 := st.Create()
	g.Recycle(h2)
	time.Sleep(50 * time.Millisecond)
	r.True(t, st.Contains(h2))

	g.Start()
	r.Eventually(t, func() bool { return !st.Contains(h2) },
		5*time.Second, 20*time.Millisecond)
}

package gc

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/stleox/spanvault/pkg/config"
	"github.com/stleox/spanvault/pkg/store"
)

// GC reconciles the host's termination signals with ongoing readers.
// Handles marked with Recycle are swept out of the store once no reader
// holds a pin on them. The sweep runs as a periodic background task.
type GC struct {
	store *store.Store

	// handles the host declared dead, awaiting a sweep
	garbage   map[store.Handle]struct{}
	muGarbage sync.Mutex

	// pin count per handle; a handle is sweepable only at count 0
	pinned   map[store.Handle]int
	muPinned sync.Mutex

	cron     *cron.Cron
	running  bool
	muRun    sync.Mutex
	interval time.Duration

	metrics *metrics
}

type Options struct {
	// SweepInterval is the sweep cadence; zero means config.DefaultSweepInterval.
	SweepInterval time.Duration
	// Registerer may be nil to skip metric registration.
	Registerer prometheus.Registerer
}

func New(st *store.Store, opts Options) *GC {
	interval := opts.SweepInterval
	if interval <= 0 {
		interval = config.DefaultSweepInterval
	}
	return &GC{
		store:    st,
		garbage:  make(map[store.Handle]struct{}),
		pinned:   make(map[store.Handle]int),
		interval: interval,
		metrics:  newMetrics(opts.Registerer),
	}
}

// Recycle marks h for removal. Never blocks, never fails: unknown handles
// are swept as no-ops later.
func (g *GC) Recycle(h store.Handle) {
	g.muGarbage.Lock()
	g.garbage[h] = struct{}{}
	g.muGarbage.Unlock()
}

// Keep pins h against reclamation. Pins are counted, so overlapping
// readers of the same handle each hold their own protection.
func (g *GC) Keep(h store.Handle) {
	g.muPinned.Lock()
	g.pinned[h]++
	g.muPinned.Unlock()
}

// Release drops one pin on h. Releasing an unpinned handle is a no-op.
func (g *GC) Release(h store.Handle) {
	g.muPinned.Lock()
	if c := g.pinned[h]; c > 1 {
		g.pinned[h] = c - 1
	} else {
		delete(g.pinned, h)
	}
	g.muPinned.Unlock()
}

// Run performs one sweep: every garbage handle without a pin is removed
// from the store and dropped from the queue. Pinned handles stay queued
// for a later sweep. Both sets stay locked for the whole pass, so a
// reader's pins land either entirely before or entirely after a sweep.
func (g *GC) Run() {
	g.muGarbage.Lock()
	defer g.muGarbage.Unlock()
	g.muPinned.Lock()
	defer g.muPinned.Unlock()

	reclaimed := 0
	for h := range g.garbage {
		if g.pinned[h] > 0 {
			continue
		}
		g.store.Remove(h)
		delete(g.garbage, h)
		reclaimed++
	}

	g.metrics.sweeps.Inc()
	g.metrics.reclaimed.Add(float64(reclaimed))
	g.metrics.queued.Set(float64(len(g.garbage)))
	if reclaimed > 0 {
		logrus.Debugf("gc sweep reclaimed %d spans, %d still queued", reclaimed, len(g.garbage))
	}
}

// Start schedules the background sweep. Idempotent while running.
func (g *GC) Start() {
	g.muRun.Lock()
	defer g.muRun.Unlock()
	if g.running {
		return
	}

	c := cron.New()
	if _, err := c.AddJob(fmt.Sprintf("@every %s", g.interval), g); err != nil {
		logrus.WithError(err).Warn("spanvault couldn't schedule the gc sweep")
		return
	}
	c.Start()

	g.cron = c
	g.running = true
	logrus.Debugf("gc started, sweeping every %s", g.interval)
}

// Stop halts the background sweep immediately. Pending garbage is
// abandoned until the next Start. Idempotent while stopped.
func (g *GC) Stop() {
	g.muRun.Lock()
	defer g.muRun.Unlock()
	if !g.running {
		return
	}

	g.cron.Stop()
	g.cron = nil
	g.running = false
	logrus.Debug("gc stopped")
}

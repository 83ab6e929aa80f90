package bench

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeromicro/go-zero/core/threading"

	"github.com/stleox/spanvault/pkg/config"
	"github.com/stleox/spanvault/pkg/encoder"
	"github.com/stleox/spanvault/pkg/gc"
	"github.com/stleox/spanvault/pkg/store"
)

func New(vp *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic span workload against a fresh store",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(vp)
		},
	}

	cmd.Flags().Int("writers", config.DefaultBenchWriters, "concurrent writer goroutines")
	cmd.Flags().Int("spans", config.DefaultBenchSpansPerWriter, "spans created per writer")
	cmd.Flags().Duration("sweep-interval", config.DefaultSweepInterval, "gc sweep interval")
	cmd.Flags().Duration("flush-interval", config.DefaultFlushInterval, "payload flush interval")
	_ = vp.BindPFlags(cmd.Flags())
	return cmd
}

func run(vp *viper.Viper) error {
	writers := vp.GetInt("writers")
	if writers <= 0 {
		writers = config.DefaultBenchWriters
	}
	spans := vp.GetInt("spans")
	if spans <= 0 {
		spans = config.DefaultBenchSpansPerWriter
	}

	reg := prometheus.NewRegistry()
	st := store.New(reg)
	g := gc.New(st, gc.Options{
		SweepInterval: vp.GetDuration("sweep-interval"),
		Registerer:    reg,
	})
	enc := encoder.New(st, g, reg)
	buf := encoder.NewBuffer(enc, encoder.BufferOptions{
		FlushInterval: vp.GetDuration("flush-interval"),
	})

	g.Start()
	defer g.Stop()

	var flushedTraces, flushedBytes atomic.Int64
	buf.StartFlusher(func(payload []byte, traces int) {
		flushedTraces.Add(int64(traces))
		flushedBytes.Add(int64(len(payload)))
		if config.Debug {
			config.Log4Payload.WithFields(logrus.Fields{
				"traces": traces,
				"bytes":  len(payload),
			}).Debug("flushed payload")
		}
	})
	defer buf.StopFlusher()

	started := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		w := w
		wg.Add(1)
		threading.GoSafe(func() {
			defer wg.Done()
			runWriter(st, g, buf, w, spans)
		})
	}
	wg.Wait()

	// final flush of whatever the background task hasn't picked up
	payload, n := buf.Flush()
	flushedTraces.Add(int64(n))
	flushedBytes.Add(int64(len(payload)))

	logrus.Infof("bench done in %s: %d writers x %d spans, flushed %d traces (%d bytes), %d spans live",
		time.Since(started), writers, spans, flushedTraces.Load(), flushedBytes.Load(), st.Len())

	if mfs, err := reg.Gather(); err == nil {
		for _, mf := range mfs {
			for _, m := range mf.GetMetric() {
				if c := m.GetCounter(); c != nil {
					logrus.Debugf("%s = %v", mf.GetName(), c.GetValue())
				}
				if ga := m.GetGauge(); ga != nil {
					logrus.Debugf("%s = %v", mf.GetName(), ga.GetValue())
				}
			}
		}
	}
	return nil
}

func runWriter(st *store.Store, g *gc.GC, buf *encoder.Buffer, id, spans int) {
	traceLen := config.DefaultBenchTraceLen
	trace := make([]store.Handle, 0, traceLen)

	for i := 0; i < spans; i++ {
		h := st.Create()
		_ = st.SetService(h, "bench")
		_ = st.SetName(h, fmt.Sprintf("writer-%d", id))
		_ = st.SetResource(h, "/bench")
		_ = st.SetTraceID(h, uint64(id)<<32|uint64(i/traceLen)+1)
		_ = st.SetSpanID(h, uint64(i)+1)
		_ = st.SetStart(h, time.Now().UnixNano())
		_ = st.SetDuration(h, int64(i%1000)+1)
		_ = st.SetMeta(h, "writer", strconv.Itoa(id))
		trace = append(trace, h)

		if len(trace) == traceLen {
			if err := buf.Put(trace); err != nil {
				logrus.WithError(err).Warn("spanvault couldn't buffer a bench trace")
			}
			for _, th := range trace {
				g.Recycle(th)
			}
			trace = trace[:0]
		}
	}

	// leftover spans of an unfinished trace are just recycled
	for _, th := range trace {
		g.Recycle(th)
	}
}

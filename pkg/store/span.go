package store

// Handle is an opaque reference to a span owned by a Store. Handles are
// recycled after removal, so a freed handle may later address a brand-new
// span. Handle 0 is never issued.
type Handle uint64

// Span is one observed unit of work. Zero field values mean "unset":
// the encoder treats zero ids, zero timings and empty strings as absent.
type Span struct {
	Service  string
	Name     string
	Resource string
	TraceID  uint64
	SpanID   uint64
	ParentID uint64
	Start    int64 // ns since epoch
	Duration int64 // ns
	Error    int32
	Type     string
	Meta     map[string]string
	Metrics  map[string]float64
}

func newSpan() *Span {
	return &Span{
		Meta:    make(map[string]string),
		Metrics: make(map[string]float64),
	}
}

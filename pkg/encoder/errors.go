package encoder

import "errors"

var (
	// ErrTraceTooLarge reports a single trace whose encoded form exceeds
	// the buffer's per-trace cap.
	ErrTraceTooLarge = errors.New("encoder: encoded trace too large")

	// ErrBufferFull reports that appending the trace would overflow the
	// payload cap; the caller should flush and retry.
	ErrBufferFull = errors.New("encoder: payload buffer full")
)

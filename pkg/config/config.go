package config

import (
	"time"
)

// for root
var (
	Debug = false
)

// for pkg gc
var (
	// 触发 sweep 的时间间隔
	DefaultSweepInterval = time.Second
)

// for pkg encoder
var (
	// 触发 flush 的时间间隔。
	// 与 sweep 间隔最好保持一致。
	DefaultFlushInterval = time.Second

	// 整个 payload 的大小上限
	DefaultMaxPayloadBytes = 8 << 20

	// 单条 trace 编码后的大小上限
	DefaultMaxTraceBytes = 5 << 19
)

// for cmd bench
var (
	DefaultBenchWriters        = 4
	DefaultBenchSpansPerWriter = 1024
	DefaultBenchTraceLen       = 16
)

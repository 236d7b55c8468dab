package emu

import (
	"log/slog"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/upload"
)

// DefaultLabelBase is where the semaphore and report area lives when a
// capture does not say otherwise.
const DefaultLabelBase = 0x4030_0000

// labelSize covers the semaphore words and the report area behind them.
const labelSize = 0x10000

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace bool // log every method at Debug

	Upload upload.Options // destination alignment and transcoding workers

	LabelBase uint32 // semaphore/report area, DefaultLabelBase when zero

	// Async runs the renderer on its own goroutine behind a queue of
	// QueueDepth requests.
	Async      bool
	QueueDepth int

	CacheSize int // texture cache entries, 256 when zero
	StepLimit int // commands per RunUntilIdle, 0 for no limit

	Logger *slog.Logger
}

// Defaults fills zero fields.
func (c *Config) Defaults() {
	c.Upload.Defaults()
	if c.LabelBase == 0 {
		c.LabelBase = DefaultLabelBase
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 256
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = 64
	}
}

package method

import "github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"

// Observer receives the side effects of dispatch. Calls happen on the
// dispatching goroutine, in command order.
type Observer interface {
	// StateChanged fires when a cacheable register takes a new value.
	StateChanged(reg gcm.Reg, d Dirty)
	Draw(d *Draw)
	Clear(c *Clear)
	Flip(buffer uint32)
	// Transfer reports memory written by the GPU itself, for cache
	// invalidation.
	Transfer(dst uint32, n int)
}

// NopObserver ignores everything. Embed it to implement only part of
// Observer.
type NopObserver struct{}

func (NopObserver) StateChanged(gcm.Reg, Dirty) {}
func (NopObserver) Draw(*Draw)                  {}
func (NopObserver) Clear(*Clear)                {}
func (NopObserver) Flip(uint32)                 {}
func (NopObserver) Transfer(uint32, int)        {}

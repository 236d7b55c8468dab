package fifo

import (
	"context"
	"sync/atomic"
)

// Control is the put/get/ref block shared with the guest. The guest moves
// put and reads ref; the puller moves get.
type Control struct {
	put  atomic.Uint32
	get  atomic.Uint32
	ref  atomic.Uint32
	kick chan struct{}
}

func NewControl() *Control {
	return &Control{kick: make(chan struct{}, 1)}
}

func (c *Control) Put() uint32 { return c.put.Load() }
func (c *Control) Get() uint32 { return c.get.Load() }
func (c *Control) Ref() uint32 { return c.ref.Load() }

// SetPut publishes new commands and wakes the puller.
func (c *Control) SetPut(v uint32) {
	c.put.Store(v)
	c.Kick()
}

// SetGet repositions the read cursor. Used by the puller and by guests
// that rewind the ring.
func (c *Control) SetGet(v uint32) { c.get.Store(v) }

func (c *Control) SetRef(v uint32) { c.ref.Store(v) }

// Kick wakes a waiting puller without moving put.
func (c *Control) Kick() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Wait blocks until the control block is kicked or ctx ends.
func (c *Control) Wait(ctx context.Context) error {
	select {
	case <-c.kick:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Puller drives a Decoder from a Control block.
type Puller struct {
	Ctrl *Control
	Dec  *Decoder

	// OnIdle runs each time the ring drains, before the puller sleeps.
	OnIdle func()
}

// Run decodes commands until ctx is cancelled or the stream faults. A fault
// stops this command buffer; get is left at the faulting command.
func (p *Puller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		get, put := p.Ctrl.Get(), p.Ctrl.Put()
		if get == put || p.Dec.Spinning() {
			if p.OnIdle != nil {
				p.OnIdle()
			}
			if err := p.Ctrl.Wait(ctx); err != nil {
				return err
			}
			p.Dec.spinning = false
			continue
		}
		next, err := p.Dec.Step(get, put)
		p.Ctrl.SetGet(next)
		if err != nil {
			return err
		}
	}
}

package fifo

import (
	"log/slog"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/diag"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
)

// Memory is what the decoder needs from the guest: IO translation and
// word reads.
type Memory interface {
	memory.Reader
	memory.Resolver
}

// Dispatcher receives every register write decoded from the stream.
type Dispatcher interface {
	Write(reg gcm.Reg, value uint32)
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(reg gcm.Reg, value uint32)

func (f DispatchFunc) Write(reg gcm.Reg, value uint32) { f(reg, value) }

const (
	// MaxCallDepth bounds the call stack.
	MaxCallDepth = 64
	// Nop runs are folded into one step up to this many words.
	maxNopRun = 1024
)

// Stats counts decoded commands.
type Stats struct {
	Methods uint64
	Writes  uint64
	Jumps   uint64
	Calls   uint64
	Returns uint64
	Nops    uint64
	Faults  uint64
}

// Decoder turns the command stream into register writes. It is driven by a
// single goroutine.
type Decoder struct {
	mem  Memory
	disp Dispatcher
	log  *slog.Logger

	calls    []uint32
	spinning bool

	Trace bool
	Stats Stats
}

func NewDecoder(mem Memory, disp Dispatcher, log *slog.Logger) *Decoder {
	return &Decoder{mem: mem, disp: disp, log: diag.Or(log)}
}

// Reset clears the call stack.
func (d *Decoder) Reset() {
	d.calls = d.calls[:0]
	d.spinning = false
}

// CallDepth returns the number of pending returns.
func (d *Decoder) CallDepth() int { return len(d.calls) }

// Spinning reports whether the last step was a jump to itself, the idle
// loop guests park the GPU on.
func (d *Decoder) Spinning() bool { return d.spinning }

func (d *Decoder) word(get uint32) (uint32, bool) {
	ea, ok := d.mem.Resolve(get)
	if !ok {
		return 0, false
	}
	p, ok := d.mem.Read(ea, 4)
	if !ok {
		return 0, false
	}
	return uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3]), true
}

// Step decodes one command at get and returns the next get. On error the
// returned cursor is get itself and no further words were consumed; for an
// AddressError every argument before the faulting one has been dispatched.
func (d *Decoder) Step(get, put uint32) (uint32, error) {
	d.spinning = false
	cmd, ok := d.word(get)
	if !ok {
		d.Stats.Faults++
		return get, &AddressError{Get: get, Header: get}
	}
	c := Classify(cmd)
	switch c.Kind {
	case KindOldJump, KindJump:
		d.Stats.Jumps++
		if c.Target == get {
			d.spinning = true
		}
		return c.Target, nil
	case KindCall:
		d.Stats.Calls++
		if len(d.calls) >= MaxCallDepth {
			d.log.Error("fifo: call stack overflow, discarding queue", "get", get, "put", put)
			return put, nil
		}
		d.calls = append(d.calls, get+4)
		return c.Target, nil
	case KindReturn:
		d.Stats.Returns++
		if len(d.calls) == 0 {
			d.log.Error("fifo: RET without CALL, discarding queue", "get", get, "put", put)
			return put, nil
		}
		next := d.calls[len(d.calls)-1]
		d.calls = d.calls[:len(d.calls)-1]
		return next, nil
	case KindNop:
		return d.skipNops(get, put), nil
	}

	if c.Unaligned() {
		d.log.Warn("fifo: unaligned command", "method", gcm.Name(c.Reg), "cmd", cmd)
	}
	// Zero-count headers only get here with bit 16 or 17 set; the rest
	// classify as nops.
	if c.Count == 0 {
		d.Stats.Methods++
		return get + 4, nil
	}
	if get < put && uint64(get)+uint64(c.Size()) > uint64(put) {
		d.Stats.Faults++
		return get, &TruncatedError{Get: get, Put: put, Count: c.Count}
	}
	d.Stats.Methods++
	for i := 0; i < c.Count; i++ {
		at := get + 4 + 4*uint32(i)
		v, ok := d.word(at)
		if !ok {
			d.Stats.Faults++
			return get, &AddressError{Get: at, Header: get, Applied: i}
		}
		r := c.RegAt(i)
		if d.Trace {
			d.log.Debug("fifo: method", "method", gcm.Name(r), "value", v)
		}
		d.disp.Write(r, v)
		d.Stats.Writes++
	}
	return get + c.Size(), nil
}

func (d *Decoder) skipNops(get, put uint32) uint32 {
	next := get + 4
	d.Stats.Nops++
	for n := 1; n < maxNopRun && next != put; n++ {
		w, ok := d.word(next)
		if !ok || w&nopMask != 0 {
			break
		}
		next += 4
		d.Stats.Nops++
	}
	return next
}

// RunUntilIdle steps until get reaches put, the stream parks on a jump to
// itself, or a fault stops it. limit caps the number of steps; zero means
// no cap.
func (d *Decoder) RunUntilIdle(get, put uint32, limit int) (uint32, error) {
	for n := 0; get != put && (limit == 0 || n < limit); n++ {
		next, err := d.Step(get, put)
		if err != nil {
			return next, err
		}
		get = next
		if d.spinning {
			break
		}
	}
	return get, nil
}

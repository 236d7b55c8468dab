package method

import (
	"log/slog"
	"math/bits"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/diag"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
)

// Memory is the guest memory used by semaphores and GPU-side copies.
type Memory interface {
	memory.Reader
	memory.Writer
	memory.Resolver
}

// Config holds addresses the dispatcher writes to.
type Config struct {
	// LabelBase is the effective address of the semaphore/label area.
	LabelBase uint32
}

// Stats counts dispatched work.
type Stats struct {
	Writes          uint64
	StateChanges    uint64
	Draws           uint64
	Clears          uint64
	Flips           uint64
	Transfers       uint64
	Unknown         uint64
	AcquireMisses   uint64
	SemaphoreWrites uint64
}

// Dispatcher applies register writes to a register file. It is owned by
// the goroutine that runs the decoder.
type Dispatcher struct {
	cfg  Config
	regs *regs.File
	mem  Memory
	obs  Observer
	log  *slog.Logger

	dirty     Dirty
	fragDirty uint16
	vertDirty uint8

	program     [gcm.TransformProgramMax * 4]uint32
	programLoad int // next word
	programEnd  int // high water mark
	consts      [gcm.TransformConstMax * 4]uint32
	constsEnd   int

	draw batch

	// OnReference receives NV406E_SET_REFERENCE values.
	OnReference func(ref uint32)

	Trace bool
	stats Stats
}

// New builds a dispatcher over file. mem may be nil when no semaphore or
// copy methods will be issued; obs may be nil.
func New(cfg Config, file *regs.File, mem Memory, obs Observer, log *slog.Logger) *Dispatcher {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Dispatcher{cfg: cfg, regs: file, mem: mem, obs: obs, log: diag.Or(log)}
}

func (d *Dispatcher) Regs() *regs.File { return d.regs }
func (d *Dispatcher) Stats() Stats     { return d.stats }

// Dirty returns the categories changed since the last draw.
func (d *Dispatcher) Dirty() Dirty { return d.dirty }

// TextureDirty returns the fragment and vertex units changed since the
// last draw.
func (d *Dispatcher) TextureDirty() (fragment uint16, vertex uint8) {
	return d.fragDirty, d.vertDirty
}

// Program returns the uploaded transform program words.
func (d *Dispatcher) Program() []uint32 { return d.program[:d.programEnd] }

// Constants returns the uploaded transform constants, four words each.
func (d *Dispatcher) Constants() []uint32 { return d.consts[:d.constsEnd] }

// Write dispatches one register write.
func (d *Dispatcher) Write(reg gcm.Reg, v uint32) {
	d.stats.Writes++
	if int(reg) >= gcm.RegCount {
		d.stats.Unknown++
		d.log.Warn("method: register out of range", "reg", reg, "value", v)
		return
	}
	e := lookup(reg)
	if d.Trace {
		d.log.Debug("method", "reg", gcm.Name(reg), "value", v)
	}
	switch e.group {
	case groupUnknown:
		d.stats.Unknown++
		d.regs.Set(reg, v)
		if v != 0 {
			d.log.Warn("method: unknown register", "reg", gcm.Name(reg), "value", v)
		}
	case groupPlain:
		d.regs.Set(reg, v)
	case groupState:
		if d.regs.Set(reg, v) {
			d.changed(reg, e.dirty)
		}
	case groupFragmentTexture:
		if d.regs.Set(reg, v) {
			d.fragDirty |= 1 << e.unit
			d.changed(reg, e.dirty)
		}
	case groupVertexTexture:
		if d.regs.Set(reg, v) {
			d.vertDirty |= 1 << e.unit
			d.changed(reg, e.dirty)
		}
	case groupFlush:
		d.regs.Set(reg, v)
		d.flush()
	case groupBeginEnd:
		// A closing END is stored after the batch snapshot.
		d.beginEnd(v)
		d.regs.Set(reg, v)
	case groupDrawArrays:
		d.regs.Set(reg, v)
		r := regs.DrawRange(v)
		d.draw.addRange(DrawArraysKind, Range{First: r.First(), Count: r.Count()})
	case groupDrawIndex:
		d.regs.Set(reg, v)
		r := regs.DrawRange(v)
		d.draw.addRange(DrawIndexedKind, Range{First: r.First(), Count: r.Count()})
	case groupInlineArray:
		d.regs.Set(reg, v)
		d.draw.kind = DrawInlineKind
		d.draw.inline = append(d.draw.inline, v)
	case groupElement16:
		d.regs.Set(reg, v)
		d.draw.kind = DrawElementsKind
		d.draw.elements = append(d.draw.elements, v&0xffff, v>>16)
	case groupElement32:
		d.regs.Set(reg, v)
		d.draw.kind = DrawElementsKind
		d.draw.elements = append(d.draw.elements, v)
	case groupProgramLoad:
		d.regs.Set(reg, v)
		d.programLoad = int(v%gcm.TransformProgramMax) * 4
	case groupProgram:
		d.regs.Set(reg, v)
		d.uploadProgram(reg, v)
	case groupConstantLoad:
		d.regs.Set(reg, v)
	case groupConstant:
		d.regs.Set(reg, v)
		d.uploadConstant(reg, v)
	case groupReference:
		d.regs.Set(reg, v)
		if d.OnReference != nil {
			d.OnReference(v)
		}
	case groupSemaphoreAcquire:
		d.regs.Set(reg, v)
		d.acquire(v)
	case groupSemaphoreRelease:
		d.regs.Set(reg, v)
		d.release(d.regs.Get(gcm.SemaphoreOffset), v)
	case groupBackEndRelease:
		d.regs.Set(reg, v)
		d.release(d.regs.Get(gcm.SetSemaphoreOffset), regs.BackEndSemaphoreValue(v))
	case groupTextureReadRelease:
		d.regs.Set(reg, v)
		d.release(d.regs.Get(gcm.SetSemaphoreOffset), v)
	case groupClear:
		d.regs.Set(reg, v)
		d.clear(regs.ClearMask(v))
	case groupCopy:
		d.regs.Set(reg, v)
		d.copyBuffer()
	case groupImageColor:
		d.regs.Set(reg, v)
		d.imageColor(int(reg-gcm.ImageColor), v)
	case groupFlip:
		d.regs.Set(reg, v)
		d.stats.Flips++
		d.obs.Flip(v)
	}
}

func (d *Dispatcher) changed(reg gcm.Reg, dirty Dirty) {
	d.dirty |= dirty
	d.stats.StateChanges++
	d.obs.StateChanged(reg, dirty)
}

// mark signals a category only on its clean to dirty transition.
func (d *Dispatcher) mark(reg gcm.Reg, dirty Dirty) {
	if d.dirty&dirty == 0 {
		d.changed(reg, dirty)
	}
}

// uploadProgram stores a program word at the load cursor. The cursor runs
// on past the 32-word method window so long uploads can stream.
func (d *Dispatcher) uploadProgram(reg gcm.Reg, v uint32) {
	if d.programLoad >= len(d.program) {
		d.log.Warn("method: transform program overflow", "reg", gcm.Name(reg))
		return
	}
	d.program[d.programLoad] = v
	d.programLoad++
	if d.programLoad > d.programEnd {
		d.programEnd = d.programLoad
	}
	d.mark(reg, DirtyTransformProgram)
}

// uploadConstant stores a constant word relative to the constant load
// index.
func (d *Dispatcher) uploadConstant(reg gcm.Reg, v uint32) {
	i := int(d.regs.Get(gcm.SetTransformConstantLoad))*4 + int(reg-gcm.SetTransformConstant)
	if i >= len(d.consts) {
		d.log.Warn("method: transform constant out of range", "index", i/4)
		return
	}
	d.consts[i] = v
	if i+1 > d.constsEnd {
		d.constsEnd = (i/4 + 1) * 4
	}
	d.mark(reg, DirtyTransformConstants)
}

func (d *Dispatcher) beginEnd(prim uint32) {
	if prim != gcm.PrimitiveNone {
		if d.draw.open && !d.draw.empty() {
			d.log.Warn("method: begin inside an open batch", "primitive", prim)
			d.submit()
		}
		d.draw.reset(prim)
		return
	}
	if !d.draw.open {
		d.log.Warn("method: end without begin")
		return
	}
	d.submit()
	d.draw.reset(gcm.PrimitiveNone)
}

// flush hands off a batch that is still open so later state changes do not
// leak into vertices already issued.
func (d *Dispatcher) flush() {
	if !d.draw.open || d.draw.empty() {
		return
	}
	d.submit()
	d.draw.reset(d.draw.prim)
}

func (d *Dispatcher) submit() {
	if d.draw.empty() {
		return
	}
	idma := regs.IndexDMA(d.regs.Get(gcm.SetIndexArrayDMA))
	dr := &Draw{
		Primitive:        d.draw.prim,
		Kind:             d.draw.kind,
		Ranges:           d.draw.ranges,
		Inline:           d.draw.inline,
		Elements:         d.draw.elements,
		IndexLocation:    idma.Location(),
		IndexType:        idma.Type(),
		IndexOffset:      d.regs.Get(gcm.SetIndexArrayAddr),
		Regs:             d.regs.Snapshot(),
		Dirty:            d.dirty,
		FragmentTextures: d.fragDirty,
		VertexTextures:   d.vertDirty,
	}
	if d.dirty&DirtyTransformProgram != 0 {
		dr.Program = append([]uint32(nil), d.Program()...)
	}
	if d.dirty&DirtyTransformConstants != 0 {
		dr.Constants = append([]uint32(nil), d.Constants()...)
	}
	d.dirty, d.fragDirty, d.vertDirty = 0, 0, 0
	d.stats.Draws++
	if d.Trace {
		d.log.Debug("method: draw", "kind", dr.Kind, "primitive", dr.Primitive,
			"vertices", dr.Vertices(), "textures", bits.OnesCount16(dr.FragmentTextures))
	}
	d.obs.Draw(dr)
}

func (d *Dispatcher) clear(mask regs.ClearMask) {
	d.stats.Clears++
	d.obs.Clear(&Clear{
		Mask:    mask,
		Color:   d.regs.Get(gcm.SetColorClearValue),
		ZS:      regs.ZStencilClear(d.regs.Get(gcm.SetZStencilClearValue)),
		RectH:   regs.Span(d.regs.Get(gcm.SetClearRectHorizontal)),
		RectV:   regs.Span(d.regs.Get(gcm.SetClearRectVertical)),
		Surface: regs.SurfaceFormat(d.regs.Get(gcm.SetSurfaceFormat)),
		Regs:    d.regs.Snapshot(),
	})
}

// Reset drops uploaded programs, the open batch and dirty tracking. The
// register file is left alone.
func (d *Dispatcher) Reset() {
	d.dirty, d.fragDirty, d.vertDirty = 0, 0, 0
	d.program = [gcm.TransformProgramMax * 4]uint32{}
	d.consts = [gcm.TransformConstMax * 4]uint32{}
	d.programLoad, d.programEnd, d.constsEnd = 0, 0, 0
	d.draw = batch{}
	d.stats = Stats{}
}

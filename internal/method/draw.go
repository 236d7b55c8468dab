package method

import (
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
)

// DrawKind tells how a draw supplies its vertices.
type DrawKind uint8

const (
	DrawArraysKind DrawKind = iota
	DrawIndexedKind
	DrawInlineKind
	DrawElementsKind
)

func (k DrawKind) String() string {
	switch k {
	case DrawArraysKind:
		return "arrays"
	case DrawIndexedKind:
		return "indexed"
	case DrawInlineKind:
		return "inline"
	case DrawElementsKind:
		return "elements"
	}
	return "unknown"
}

// Range is one first/count pair of a draw.
type Range struct {
	First, Count uint32
}

// Draw is handed to the Observer when a begin/end batch closes. Regs is a
// private snapshot taken before any later write is applied.
type Draw struct {
	Primitive uint32
	Kind      DrawKind
	Ranges    []Range
	Inline    []uint32 // raw vertex words
	Elements  []uint32 // indices from ARRAY_ELEMENT

	IndexLocation uint8
	IndexType     uint8
	IndexOffset   uint32

	Regs *regs.File

	// What changed since the previous draw.
	Dirty            Dirty
	FragmentTextures uint16 // unit mask
	VertexTextures   uint8

	// Copies of the uploaded programs when they changed.
	Program   []uint32
	Constants []uint32
}

// Vertices counts the vertices referenced by the draw.
func (d *Draw) Vertices() int {
	switch d.Kind {
	case DrawElementsKind:
		return len(d.Elements)
	case DrawInlineKind:
		return len(d.Inline)
	}
	n := 0
	for _, r := range d.Ranges {
		n += int(r.Count)
	}
	return n
}

// Clear is raised by NV4097_CLEAR_SURFACE.
type Clear struct {
	Mask    regs.ClearMask
	Color   uint32
	ZS      regs.ZStencilClear
	RectH   regs.Span
	RectV   regs.Span
	Surface regs.SurfaceFormat
	Regs    *regs.File
}

type batch struct {
	open     bool
	prim     uint32
	kind     DrawKind
	ranges   []Range
	inline   []uint32
	elements []uint32
}

func (b *batch) empty() bool {
	return len(b.ranges) == 0 && len(b.inline) == 0 && len(b.elements) == 0
}

func (b *batch) reset(prim uint32) {
	*b = batch{open: prim != gcm.PrimitiveNone, prim: prim}
}

// addRange merges a range that continues the previous one.
func (b *batch) addRange(kind DrawKind, r Range) {
	b.kind = kind
	if n := len(b.ranges); n > 0 {
		last := &b.ranges[n-1]
		if last.First+last.Count == r.First {
			last.Count += r.Count
			return
		}
	}
	b.ranges = append(b.ranges, r)
}

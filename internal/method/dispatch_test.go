package method

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/fifo"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
)

// countingObserver records every callback.
type countingObserver struct {
	changes   map[gcm.Reg]int
	draws     []*Draw
	clears    []*Clear
	flips     []uint32
	transfers int
}

func newCounting() *countingObserver {
	return &countingObserver{changes: make(map[gcm.Reg]int)}
}

func (o *countingObserver) StateChanged(r gcm.Reg, _ Dirty) { o.changes[r]++ }
func (o *countingObserver) Draw(d *Draw)                    { o.draws = append(o.draws, d) }
func (o *countingObserver) Clear(c *Clear)                  { o.clears = append(o.clears, c) }
func (o *countingObserver) Flip(b uint32)                   { o.flips = append(o.flips, b) }
func (o *countingObserver) Transfer(uint32, int)            { o.transfers++ }

func newDispatcher(obs Observer, mem Memory) *Dispatcher {
	return New(Config{LabelBase: labelBase}, regs.New(), mem, obs, nil)
}

const labelBase = 0x4030_0000

func TestWriteThenCompareAllRegisters(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	for r := 0; r < gcm.RegCount; r++ {
		reg := gcm.Reg(r)
		before := obs.changes[reg]
		d.Write(reg, 0x5a5a0001)
		d.Write(reg, 0x5a5a0001)
		if n := obs.changes[reg] - before; n > 1 {
			t.Fatalf("%s: %d state changes for a repeated write", gcm.Name(reg), n)
		}
	}
}

func TestStateChangeOnlyOnNewValue(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	d.Write(gcm.SetBlendEnable, 1)
	d.Write(gcm.SetBlendEnable, 1)
	d.Write(gcm.SetBlendEnable, 0)
	if obs.changes[gcm.SetBlendEnable] != 2 {
		t.Fatalf("blend enable changes %d, want 2", obs.changes[gcm.SetBlendEnable])
	}
	if d.Dirty() != DirtyBlend {
		t.Fatalf("dirty %v", d.Dirty())
	}
}

func TestClearColorMethodThroughDecoder(t *testing.T) {
	bus := memory.New()
	bus.MapIO(0, 0x2000_0000, memory.IOPage)
	var b fifo.Builder
	b.MethodNI(gcm.SetColorClearValue, 0x00FF00FF)
	bus.Load(0x2000_0000, b.Bytes())

	obs := newCounting()
	d := newDispatcher(obs, bus)
	dec := fifo.NewDecoder(bus, d, nil)
	if _, err := dec.RunUntilIdle(0, b.Len(), 0); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := d.Regs().Get(gcm.SetColorClearValue); got != 0x00FF00FF {
		t.Fatalf("clear color %08x", got)
	}
	if len(obs.draws) != 0 || len(obs.clears) != 0 {
		t.Fatalf("draws=%d clears=%d, want none", len(obs.draws), len(obs.clears))
	}
}

func TestDrawArraysBatch(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	d.Write(gcm.SetDepthFunc, gcm.FuncLess)
	d.Write(gcm.SetBeginEnd, gcm.PrimitiveTriangles)
	d.Write(gcm.DrawArrays, uint32(regs.EncodeDrawRange(0, 3)))
	d.Write(gcm.DrawArrays, uint32(regs.EncodeDrawRange(3, 3)))
	d.Write(gcm.DrawArrays, uint32(regs.EncodeDrawRange(100, 6)))
	if len(obs.draws) != 0 {
		t.Fatal("draw raised before end")
	}
	d.Write(gcm.SetBeginEnd, gcm.PrimitiveNone)
	d.Write(gcm.SetDepthFunc, gcm.FuncGreater)

	if len(obs.draws) != 1 {
		t.Fatalf("draws %d, want 1", len(obs.draws))
	}
	dr := obs.draws[0]
	if dr.Primitive != gcm.PrimitiveTriangles || dr.Kind != DrawArraysKind {
		t.Fatalf("draw %v prim %d", dr.Kind, dr.Primitive)
	}
	if len(dr.Ranges) != 2 || dr.Ranges[0] != (Range{0, 6}) || dr.Ranges[1] != (Range{100, 6}) {
		t.Fatalf("ranges %+v", dr.Ranges)
	}
	if dr.Vertices() != 12 {
		t.Fatalf("vertices %d", dr.Vertices())
	}
	if got := dr.Regs.Get(gcm.SetDepthFunc); got != gcm.FuncLess {
		t.Fatalf("snapshot saw later write: depth func %#x", got)
	}
	if got := dr.Regs.Get(gcm.SetBeginEnd); got != gcm.PrimitiveTriangles {
		t.Fatalf("snapshot begin/end %#x, want the primitive the batch was issued with", got)
	}
	if got := d.Regs().Get(gcm.SetBeginEnd); got != gcm.PrimitiveNone {
		t.Fatalf("live begin/end %#x after end", got)
	}
	if dr.Dirty&DirtyDepthStencil == 0 {
		t.Fatalf("draw dirty %v", dr.Dirty)
	}
	if d.Dirty() != DirtyDepthStencil {
		t.Fatalf("dirty after draw %v, want only the later depth write", d.Dirty())
	}
}

func TestEmptyBatchRaisesNoDraw(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	d.Write(gcm.SetBeginEnd, gcm.PrimitivePoints)
	d.Write(gcm.SetBeginEnd, gcm.PrimitiveNone)
	d.Write(gcm.SetBeginEnd, gcm.PrimitiveNone) // end without begin
	if len(obs.draws) != 0 {
		t.Fatalf("draws %d", len(obs.draws))
	}
}

func TestInlineAndElementDraws(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	d.Write(gcm.SetBeginEnd, gcm.PrimitiveTriangleStrip)
	for i := uint32(0); i < 4; i++ {
		d.Write(gcm.InlineArray, i)
	}
	d.Write(gcm.SetBeginEnd, 0)
	d.Write(gcm.SetBeginEnd, gcm.PrimitiveLines)
	d.Write(gcm.ArrayElement16, 0x0002_0001)
	d.Write(gcm.ArrayElement32, 7)
	d.Write(gcm.SetBeginEnd, 0)

	if len(obs.draws) != 2 {
		t.Fatalf("draws %d", len(obs.draws))
	}
	if obs.draws[0].Kind != DrawInlineKind || len(obs.draws[0].Inline) != 4 {
		t.Fatalf("inline draw %+v", obs.draws[0])
	}
	el := obs.draws[1].Elements
	if obs.draws[1].Kind != DrawElementsKind || len(el) != 3 || el[0] != 1 || el[1] != 2 || el[2] != 7 {
		t.Fatalf("element draw %v %v", obs.draws[1].Kind, el)
	}
}

func TestIndexedDrawCarriesIndexArray(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	d.Write(gcm.SetIndexArrayAddr, 0x1000)
	d.Write(gcm.SetIndexArrayDMA, uint32(regs.EncodeIndexDMA(gcm.LocationMain, gcm.IndexType16)))
	d.Write(gcm.SetBeginEnd, gcm.PrimitiveTriangles)
	d.Write(gcm.DrawIndexArray, uint32(regs.EncodeDrawRange(0, 36)))
	d.Write(gcm.SetBeginEnd, 0)
	dr := obs.draws[0]
	if dr.Kind != DrawIndexedKind || dr.IndexOffset != 0x1000 || dr.IndexLocation != gcm.LocationMain || dr.IndexType != gcm.IndexType16 {
		t.Fatalf("indexed draw %+v", dr)
	}
}

func TestWaitForIdleFlushesOpenBatch(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	d.Write(gcm.SetBeginEnd, gcm.PrimitiveTriangles)
	d.Write(gcm.DrawArrays, uint32(regs.EncodeDrawRange(0, 3)))
	d.Write(gcm.WaitForIdle, 0)
	d.Write(gcm.DrawArrays, uint32(regs.EncodeDrawRange(3, 3)))
	d.Write(gcm.SetBeginEnd, 0)
	if len(obs.draws) != 2 {
		t.Fatalf("draws %d, want 2", len(obs.draws))
	}
	if obs.draws[1].Primitive != gcm.PrimitiveTriangles || obs.draws[1].Ranges[0].First != 3 {
		t.Fatalf("second draw %+v", obs.draws[1])
	}
}

func TestTextureUnitDirtyMask(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	unit3 := gcm.SetTextureOffset + 3*gcm.TextureUnitWords
	d.Write(unit3+1, uint32(regs.EncodeTexFormat(gcm.LocationLocal, false, 0, gcm.TexDimension2D, gcm.TexFormatA8R8G8B8, 1)))
	d.Write(gcm.SetTextureControl3+5, uint32(regs.EncodeTexControl3(256, 1)))
	d.Write(gcm.SetVertexTextureOffset+gcm.TextureUnitWords, 0x100)

	frag, vert := d.TextureDirty()
	if frag != 1<<3|1<<5 || vert != 1<<1 {
		t.Fatalf("dirty units frag=%b vert=%b", frag, vert)
	}
	d.Write(gcm.SetBeginEnd, gcm.PrimitivePoints)
	d.Write(gcm.DrawArrays, uint32(regs.EncodeDrawRange(0, 1)))
	d.Write(gcm.SetBeginEnd, 0)
	if obs.draws[0].FragmentTextures != 1<<3|1<<5 || obs.draws[0].VertexTextures != 1<<1 {
		t.Fatalf("draw texture masks %b %b", obs.draws[0].FragmentTextures, obs.draws[0].VertexTextures)
	}
	if frag, vert = d.TextureDirty(); frag != 0 || vert != 0 {
		t.Fatal("texture dirty mask not cleared by the draw")
	}
	// Rewriting the same descriptor is not a change.
	d.Write(unit3+1, uint32(regs.EncodeTexFormat(gcm.LocationLocal, false, 0, gcm.TexDimension2D, gcm.TexFormatA8R8G8B8, 1)))
	if frag, _ = d.TextureDirty(); frag != 0 {
		t.Fatalf("redundant write marked units %b", frag)
	}
}

func TestTransformProgramUpload(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	d.Write(gcm.SetTransformProgramLoad, 2)
	for i := 0; i < 40; i++ {
		d.Write(gcm.SetTransformProgram+gcm.Reg(i%gcm.TransformWords), uint32(i+1))
	}
	prog := d.Program()
	if len(prog) != 8+40 || prog[8] != 1 || prog[47] != 40 {
		t.Fatalf("program len %d", len(prog))
	}
	total := 0
	for _, n := range obs.changes {
		total += n
	}
	if total != 1 {
		t.Fatalf("program upload signalled %d times, want 1", total)
	}
	d.Write(gcm.SetBeginEnd, gcm.PrimitivePoints)
	d.Write(gcm.DrawArrays, uint32(regs.EncodeDrawRange(0, 1)))
	d.Write(gcm.SetBeginEnd, 0)
	if len(obs.draws[0].Program) != 48 {
		t.Fatalf("draw program copy %d words", len(obs.draws[0].Program))
	}
}

func TestTransformConstantUpload(t *testing.T) {
	d := newDispatcher(newCounting(), nil)
	d.Write(gcm.SetTransformConstantLoad, 3)
	for i := 0; i < 8; i++ {
		d.Write(gcm.SetTransformConstant+gcm.Reg(i), uint32(0x3f800000+i))
	}
	c := d.Constants()
	if len(c) != 20 || c[12] != 0x3f800000 || c[19] != 0x3f800007 {
		t.Fatalf("constants len %d", len(c))
	}
}

func TestClearSurface(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	d.Write(gcm.SetColorClearValue, 0xff102030)
	d.Write(gcm.ClearSurface, gcm.ClearColor|gcm.ClearZ)
	if len(obs.clears) != 1 || len(obs.draws) != 0 {
		t.Fatalf("clears %d draws %d", len(obs.clears), len(obs.draws))
	}
	c := obs.clears[0]
	if c.Color != 0xff102030 || !c.Mask.Color() || !c.Mask.Depth() || c.Mask.Stencil() {
		t.Fatalf("clear %+v", c)
	}
}

func TestSemaphores(t *testing.T) {
	bus := memory.New()
	bus.Alloc(labelBase, memory.PageSize)
	obs := newCounting()
	d := newDispatcher(obs, bus)

	d.Write(gcm.SemaphoreOffset, 0x10)
	d.Write(gcm.SemaphoreRelease, 0xabc)
	if v, _ := bus.Read32(labelBase + 0x10); v != 0xabc {
		t.Fatalf("release wrote %#x", v)
	}
	d.Write(gcm.SemaphoreAcquire, 0xabc)
	d.Write(gcm.SemaphoreAcquire, 0xdef)
	if d.Stats().AcquireMisses != 1 {
		t.Fatalf("acquire misses %d", d.Stats().AcquireMisses)
	}

	d.Write(gcm.SetSemaphoreOffset, 0x20)
	d.Write(gcm.BackEndWriteSemaphoreRelease, 0x11223344)
	if v, _ := bus.Read32(labelBase + 0x20); v != 0x11443322 {
		t.Fatalf("back end release wrote %#x", v)
	}
	d.Write(gcm.TextureReadSemaphoreRelease, 0x55)
	if v, _ := bus.Read32(labelBase + 0x20); v != 0x55 {
		t.Fatalf("texture read release wrote %#x", v)
	}
	if obs.transfers != 3 {
		t.Fatalf("transfers %d", obs.transfers)
	}
}

func TestBufferCopy(t *testing.T) {
	bus := memory.New()
	bus.Alloc(memory.LocalBase, memory.PageSize)
	for i := 0; i < 4; i++ {
		bus.Write32(memory.LocalBase+uint32(i)*0x40, 0xa0+uint32(i))
	}
	obs := newCounting()
	d := newDispatcher(obs, bus)
	d.Write(gcm.M2MSetContextDMABufferIn, gcm.ContextDMAMemoryFrameBuffer)
	d.Write(gcm.M2MSetContextDMABufferOut, gcm.ContextDMAMemoryFrameBuffer)
	d.Write(gcm.M2MOffsetIn, 0)
	d.Write(gcm.M2MOffsetOut, 0x1000)
	d.Write(gcm.M2MPitchIn, 0x40)
	d.Write(gcm.M2MPitchOut, 4)
	d.Write(gcm.M2MLineLengthIn, 4)
	d.Write(gcm.M2MLineCount, 4)
	d.Write(gcm.M2MFormat, 0x101)
	d.Write(gcm.M2MBufferNotify, 0)

	for i := uint32(0); i < 4; i++ {
		if v, _ := bus.Read32(memory.LocalBase + 0x1000 + 4*i); v != 0xa0+i {
			t.Fatalf("line %d copied %#x", i, v)
		}
	}
	if obs.transfers != 1 {
		t.Fatalf("transfers %d", obs.transfers)
	}
}

func TestWritePastMethodSpace(t *testing.T) {
	d := newDispatcher(newCounting(), nil)
	d.Write(gcm.Reg(gcm.RegCount), 1)
	d.Write(gcm.Reg(0xffff), 2)
	if n := d.Stats().Unknown; n != 2 {
		t.Fatalf("unknown writes %d, want 2", n)
	}
}

func TestIncrementHeaderAtTopOfMethodSpace(t *testing.T) {
	bus := memory.New()
	bus.MapIO(0, 0x2000_0000, memory.IOPage)
	var b fifo.Builder
	b.Method(gcm.Reg(0x3ffe), 1, 2, 3, 4)
	bus.Load(0x2000_0000, b.Bytes())

	d := newDispatcher(newCounting(), bus)
	dec := fifo.NewDecoder(bus, d, nil)
	if _, err := dec.RunUntilIdle(0, b.Len(), 0); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := d.Regs().Get(gcm.Reg(0x3fff)); got != 2 {
		t.Fatalf("reg 0x3fff = %d, want 2", got)
	}
	if got := d.Regs().Get(gcm.Reg(1)); got != 4 {
		t.Fatalf("wrapped write to reg 1 = %d, want 4", got)
	}
}

func TestImageColorUpload(t *testing.T) {
	bus := memory.New()
	bus.Alloc(memory.LocalBase, memory.PageSize)
	d := newDispatcher(newCounting(), bus)
	d.Write(gcm.Surf2DSetContextDMADestin, gcm.ContextDMAMemoryFrameBuffer)
	d.Write(gcm.Surf2DSetColorFormat, gcm.Transfer2DFormatA8R8G8B8)
	d.Write(gcm.Surf2DSetPitch, uint32(regs.EncodeSurface2DPitch(0, 0x100)))
	d.Write(gcm.Surf2DSetOffsetDestin, 0x800)
	d.Write(gcm.ImagePoint, uint32(regs.EncodePoint(2, 1)))
	d.Write(gcm.ImageColor, 0x11111111)
	d.Write(gcm.ImageColor+1, 0x22222222)

	at := uint32(memory.LocalBase + 0x800 + 0x100 + 2*4)
	if v, _ := bus.Read32(at); v != 0x11111111 {
		t.Fatalf("pixel 0 %#x", v)
	}
	if v, _ := bus.Read32(at + 4); v != 0x22222222 {
		t.Fatalf("pixel 1 %#x", v)
	}
}

func TestFlipReferenceAndUnknown(t *testing.T) {
	obs := newCounting()
	d := newDispatcher(obs, nil)
	var ref uint32
	d.OnReference = func(v uint32) { ref = v }
	d.Write(gcm.SetReference, 42)
	d.Write(gcm.FlipCommand, 1)
	d.Write(gcm.Reg(0x1234>>2), 7)
	if ref != 42 {
		t.Fatalf("reference %d", ref)
	}
	if len(obs.flips) != 1 || obs.flips[0] != 1 {
		t.Fatalf("flips %v", obs.flips)
	}
	if d.Stats().Unknown != 1 || d.Regs().Get(gcm.Reg(0x1234>>2)) != 7 {
		t.Fatalf("unknown writes %d", d.Stats().Unknown)
	}
}

func TestTablesNameEveryHandledRegister(t *testing.T) {
	for r := 0; r < gcm.RegCount; r++ {
		reg := gcm.Reg(r)
		if lookup(reg).group != groupUnknown && !gcm.Known(reg) {
			t.Errorf("%s handled but has no name", gcm.Name(reg))
		}
	}
	if lookup(gcm.SetColorClearValue).group != groupPlain || lookup(gcm.FlipCommand).group != groupFlip {
		t.Fatal("table selection by subchannel is wrong")
	}
	if packed[gcm.FlipCommand].group != groupUnknown || expanded[gcm.SetColorClearValue].group != groupUnknown {
		t.Fatal("tables overlap")
	}
}

func TestDirtyString(t *testing.T) {
	if s := (DirtyBlend | DirtyShader).String(); s != "blend|shader" {
		t.Fatalf("got %q", s)
	}
	if Dirty(0).String() != "none" {
		t.Fatal("zero dirty")
	}
}

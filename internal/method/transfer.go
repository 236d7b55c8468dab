package method

import (
	"encoding/binary"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
)

// reportOffset is where report and label writes start inside the label
// area.
const reportOffset = 0x1400

// Locate turns a location or DMA context handle plus offset into an
// effective address.
func (d *Dispatcher) Locate(location, offset uint32) (uint32, bool) {
	switch location {
	case gcm.LocationLocal, gcm.ContextDMAMemoryFrameBuffer:
		return memory.LocalAddress(offset), true
	case gcm.LocationMain, gcm.ContextDMAMemoryHostBuffer:
		if d.mem == nil {
			return 0, false
		}
		return d.mem.Resolve(offset)
	case gcm.ContextDMASemaphoreRW, gcm.ContextDMASemaphoreR:
		return d.cfg.LabelBase + offset, true
	case gcm.ContextDMAReportLocationLocal:
		return d.cfg.LabelBase + reportOffset + offset, true
	case gcm.ContextDMAReportLocationMain:
		if d.mem == nil {
			return 0, false
		}
		return d.mem.Resolve(0x0e000000 + offset)
	}
	return 0, false
}

func (d *Dispatcher) write32(addr, v uint32) bool {
	if d.mem == nil {
		return false
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return d.mem.Write(addr, b[:])
}

func (d *Dispatcher) release(offset, v uint32) {
	addr := d.cfg.LabelBase + offset
	if !d.write32(addr, v) {
		d.log.Warn("method: semaphore release to unmapped memory", "addr", addr)
		return
	}
	d.stats.SemaphoreWrites++
	d.obs.Transfer(addr, 4)
}

// acquire checks the semaphore without blocking. The decoder keeps going
// either way; a mismatch is counted and logged.
func (d *Dispatcher) acquire(want uint32) {
	addr := d.cfg.LabelBase + d.regs.Get(gcm.SemaphoreOffset)
	var got uint32
	if d.mem != nil {
		if p, ok := d.mem.Read(addr, 4); ok {
			got = binary.BigEndian.Uint32(p)
		}
	}
	if got != want {
		d.stats.AcquireMisses++
		d.log.Debug("method: semaphore acquire not satisfied", "addr", addr, "want", want, "got", got)
	}
}

// copyBuffer runs the NV0039 line copy programmed by the preceding
// methods.
func (d *Dispatcher) copyBuffer() {
	in, okIn := d.Locate(d.regs.Get(gcm.M2MSetContextDMABufferIn), d.regs.Get(gcm.M2MOffsetIn))
	out, okOut := d.Locate(d.regs.Get(gcm.M2MSetContextDMABufferOut), d.regs.Get(gcm.M2MOffsetOut))
	if !okIn || !okOut || d.mem == nil {
		d.log.Warn("method: buffer copy with unresolvable location",
			"in", d.regs.Get(gcm.M2MSetContextDMABufferIn), "out", d.regs.Get(gcm.M2MSetContextDMABufferOut))
		return
	}
	lineLen := int(d.regs.Get(gcm.M2MLineLengthIn))
	lines := int(d.regs.Get(gcm.M2MLineCount))
	pitchIn := int32(d.regs.Get(gcm.M2MPitchIn))
	pitchOut := int32(d.regs.Get(gcm.M2MPitchOut))
	f := regs.TransferFormat(d.regs.Get(gcm.M2MFormat))
	if f.In() > 1 || f.Out() > 1 {
		d.log.Warn("method: buffer copy with element stride", "in", f.In(), "out", f.Out())
	}
	if lines == 0 || lineLen == 0 {
		return
	}
	if pitchIn == 0 {
		pitchIn = int32(lineLen)
	}
	if pitchOut == 0 {
		pitchOut = int32(lineLen)
	}
	for l := 0; l < lines; l++ {
		src := in + uint32(int32(l)*pitchIn)
		dst := out + uint32(int32(l)*pitchOut)
		p, ok := d.mem.Read(src, lineLen)
		if !ok || !d.mem.Write(dst, p) {
			d.log.Warn("method: buffer copy fault", "line", l, "src", src, "dst", dst)
			return
		}
	}
	d.stats.Transfers++
	d.obs.Transfer(out, int(pitchOut)*(lines-1)+lineLen)
}

// imageColor stores one NV308A pixel word at the point programmed by
// NV308A_POINT into the NV3062 destination surface.
func (d *Dispatcher) imageColor(index int, v uint32) {
	base, ok := d.Locate(d.regs.Get(gcm.Surf2DSetContextDMADestin), d.regs.Get(gcm.Surf2DSetOffsetDestin))
	if !ok {
		d.log.Warn("method: image upload with unresolvable destination")
		return
	}
	pt := regs.Point(d.regs.Get(gcm.ImagePoint))
	pitch := uint32(regs.Surface2DPitch(d.regs.Get(gcm.Surf2DSetPitch)).Destin())
	var b []byte
	x := uint32(pt.X())
	switch d.regs.Get(gcm.Surf2DSetColorFormat) {
	case gcm.Transfer2DFormatR5G6B5:
		// Two 16-bit pixels per word.
		b = binary.BigEndian.AppendUint32(nil, v<<16|v>>16)
		x = (x + uint32(index)*2) * 2
	default:
		b = binary.BigEndian.AppendUint32(nil, v)
		x = (x + uint32(index)) * 4
	}
	addr := base + uint32(pt.Y())*pitch + x
	if d.mem == nil || !d.mem.Write(addr, b) {
		d.log.Warn("method: image upload fault", "addr", addr)
		return
	}
	d.obs.Transfer(addr, len(b))
}

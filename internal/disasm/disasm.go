// Package disasm renders command words and register writes as text for
// tooling. Nothing in the emulation path depends on it.
package disasm

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/fifo"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/upload"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/vp"
)

// Word renders one command word.
func Word(w uint32) string {
	c := fifo.Classify(w)
	switch c.Kind {
	case fifo.KindOldJump, fifo.KindJump:
		return fmt.Sprintf("JUMP 0x%08x", c.Target)
	case fifo.KindCall:
		return fmt.Sprintf("CALL 0x%08x", c.Target)
	case fifo.KindReturn:
		return "RET"
	case fifo.KindNop:
		return "NOP"
	}
	var b strings.Builder
	b.WriteString(gcm.Name(c.Reg))
	fmt.Fprintf(&b, " x%d", c.Count)
	if c.NonIncrement {
		b.WriteString(" (ni)")
	}
	if sub := c.Reg.Subchannel(); sub != 0 {
		fmt.Fprintf(&b, " sub%d", sub)
	}
	return b.String()
}

var primitives = [...]string{
	"END", "POINTS", "LINES", "LINE_LOOP", "LINE_STRIP", "TRIANGLES",
	"TRIANGLE_STRIP", "TRIANGLE_FAN", "QUADS", "QUAD_STRIP", "POLYGON",
}

// Primitive names a SET_BEGIN_END argument.
func Primitive(v uint32) string {
	if int(v) < len(primitives) {
		return primitives[v]
	}
	return fmt.Sprintf("PRIM_%d", v)
}

// Method renders one register write with a field decode for registers
// where one helps.
func Method(r gcm.Reg, v uint32) string {
	s := fmt.Sprintf("%s = 0x%08x", gcm.Name(r), v)
	if d := detail(r, v); d != "" {
		s += "  ; " + d
	}
	return s
}

func detail(r gcm.Reg, v uint32) string {
	switch r {
	case gcm.SetBeginEnd:
		return Primitive(v)
	case gcm.DrawArrays, gcm.DrawIndexArray:
		d := regs.DrawRange(v)
		return fmt.Sprintf("first=%d count=%d", d.First(), d.Count())
	case gcm.SetSurfaceFormat:
		f := regs.SurfaceFormat(v)
		return fmt.Sprintf("color=%d depth=%d type=%d aa=%d %dx%d",
			f.Color(), f.Depth(), f.Type(), f.Antialias(), 1<<f.LogWidth(), 1<<f.LogHeight())
	case gcm.ClearSurface:
		m := regs.ClearMask(v)
		return fmt.Sprintf("z=%v s=%v color=%#x", m.Depth(), m.Stencil(), v&0xf0)
	case gcm.SetIndexArrayDMA:
		d := regs.IndexDMA(v)
		return fmt.Sprintf("location=%d type=%d", d.Location(), d.Type())
	case gcm.BackEndWriteSemaphoreRelease:
		return fmt.Sprintf("value=0x%08x", regs.BackEndSemaphoreValue(v))
	case gcm.SetSurfaceClipHorizontal, gcm.SetSurfaceClipVertical,
		gcm.SetViewportHorizontal, gcm.SetViewportVertical,
		gcm.SetScissorHorizontal, gcm.SetScissorVertical,
		gcm.SetClearRectHorizontal, gcm.SetClearRectVertical:
		s := regs.Span(v)
		return fmt.Sprintf("origin=%d size=%d", s.Origin(), s.Size())
	}
	if r >= gcm.SetTextureOffset && r < gcm.SetTextureOffset+gcm.TextureUnits*gcm.TextureUnitWords {
		return textureDetail(int(r-gcm.SetTextureOffset)%gcm.TextureUnitWords, v)
	}
	if r >= gcm.SetVertexTextureOffset && r < gcm.SetVertexTextureOffset+gcm.VertexTextureUnits*gcm.TextureUnitWords {
		return textureDetail(int(r-gcm.SetVertexTextureOffset)%gcm.TextureUnitWords, v)
	}
	return ""
}

func textureDetail(word int, v uint32) string {
	switch word {
	case 1:
		f := regs.TexFormat(v)
		fm := f.Format()
		s := fmt.Sprintf("%s dim=%d mips=%d loc=%d", upload.FormatName(fm), f.Dimension(), f.MipMaps(), f.Location())
		if fm&gcm.TexFormatLN != 0 {
			s += " linear"
		}
		if f.Cubemap() {
			s += " cube"
		}
		return s
	case 6:
		r := regs.ImageRect(v)
		return fmt.Sprintf("%dx%d", r.Width(), r.Height())
	}
	return ""
}

// Program lists vertex program words, one instruction per line.
func Program(w io.Writer, words []uint32) {
	for i, in := range vp.Program(words) {
		fmt.Fprintf(w, "%3d: %s\n", i, in)
	}
}

// Listing accumulates state while a stream is walked.
type Listing struct {
	w       io.Writer
	program []uint32
	Lines   int
}

func (l *Listing) Write(r gcm.Reg, v uint32) {
	fmt.Fprintf(l.w, "\t%s\n", Method(r, v))
	l.Lines++
	if r >= gcm.SetTransformProgram && r < gcm.SetTransformProgram+gcm.TransformWords {
		l.program = append(l.program, v)
	}
}

// Stream walks the command buffer from get to put the way the decoder does,
// following jumps and calls, and prints each command with its arguments.
// Uploaded vertex program words are listed at the end. limit caps the
// number of commands; a jump to itself ends the walk.
func Stream(w io.Writer, mem fifo.Memory, get, put uint32, limit int) error {
	l := &Listing{w: w}
	dec := fifo.NewDecoder(mem, l, nil)
	for n := 0; get != put && (limit == 0 || n < limit); n++ {
		cmd, ok := readWord(mem, get)
		if ok {
			fmt.Fprintf(w, "%08x: %08x  %s\n", get, cmd, Word(cmd))
		}
		next, err := dec.Step(get, put)
		if err != nil {
			fmt.Fprintf(w, "%08x: error: %v\n", get, err)
			return err
		}
		if ok && fifo.Classify(cmd).Kind == fifo.KindNop && next-get > 4 {
			fmt.Fprintf(w, "\t(%d nops)\n", (next-get)/4)
		}
		if dec.Spinning() {
			fmt.Fprintf(w, "%08x: idle\n", get)
			break
		}
		get = next
	}
	if len(l.program) > 0 {
		fmt.Fprintf(w, "\ntransform program (%d words):\n", len(l.program))
		Program(w, l.program)
	}
	return nil
}

func readWord(mem fifo.Memory, addr uint32) (uint32, bool) {
	ea, ok := mem.Resolve(addr)
	if !ok {
		return 0, false
	}
	p, ok := mem.Read(ea, 4)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint32(p), true
}

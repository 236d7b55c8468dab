package disasm

import (
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/fifo"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
)

func TestWord(t *testing.T) {
	cases := []struct {
		w    uint32
		want string
	}{
		{fifo.Header(gcm.SetColorClearValue, 1, true), "NV4097_SET_COLOR_CLEAR_VALUE x1 (ni)"},
		{fifo.Header(gcm.SetTextureOffset+9, 2, false), "NV4097_SET_TEXTURE_FORMAT[1] x2"},
		{fifo.Header(gcm.M2MOffsetIn, 8, false), "NV0039_OFFSET_IN x8 sub1"},
		{fifo.JumpCmd(0x100), "JUMP 0x00000100"},
		{fifo.CallCmd(0x2000), "CALL 0x00002000"},
		{fifo.ReturnCmd, "RET"},
		{0, "NOP"},
	}
	for _, c := range cases {
		if got := Word(c.w); got != c.want {
			t.Errorf("Word(%08x) = %q, want %q", c.w, got, c.want)
		}
	}
}

func TestMethodDetail(t *testing.T) {
	if got := Method(gcm.SetBeginEnd, gcm.PrimitiveTriangles); !strings.HasSuffix(got, "; TRIANGLES") {
		t.Fatalf("begin end: %q", got)
	}
	if got := Method(gcm.DrawArrays, uint32(regs.EncodeDrawRange(4, 6))); !strings.Contains(got, "first=4 count=6") {
		t.Fatalf("draw arrays: %q", got)
	}
	f := regs.EncodeTexFormat(gcm.LocationLocal, true, 0, gcm.TexDimension2D, gcm.TexFormatCompressedDXT1|gcm.TexFormatLN, 3)
	got := Method(gcm.SetTextureOffset+1, uint32(f))
	if !strings.Contains(got, "DXT1 dim=2 mips=3 loc=0 linear cube") {
		t.Fatalf("texture format: %q", got)
	}
	if got := Method(gcm.SetVertexTextureOffset+6, uint32(regs.EncodeImageRect(64, 32))); !strings.HasSuffix(got, "; 64x32") {
		t.Fatalf("vertex image rect: %q", got)
	}
	if got := Method(gcm.SetColorClearValue, 1); strings.Contains(got, ";") {
		t.Fatalf("plain register got detail: %q", got)
	}
}

func TestStream(t *testing.T) {
	const ea = 0x2000_0000
	var b fifo.Builder
	b.Method(gcm.SetBeginEnd, gcm.PrimitiveTriangles)
	b.Method(gcm.DrawArrays, uint32(regs.EncodeDrawRange(0, 3)))
	call := b.Len()
	b.Call(0)
	b.Nop(3)
	b.Method(gcm.SetTransformProgram, 0, 0, 0, 1)
	idle := b.Len()
	b.Jump(idle)
	sub := b.Len()
	b.Method(gcm.SetColorClearValue, 0xff00ff00)
	b.Return()
	b.Patch(call, fifo.CallCmd(sub))

	bus := memory.New()
	bus.MapIO(0, ea, memory.IOPage)
	bus.Alloc(ea, memory.PageSize)
	bus.Write(ea, b.Bytes())

	var out strings.Builder
	if err := Stream(&out, bus, 0, b.Len(), 100); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"NV4097_SET_BEGIN_END = 0x00000005  ; TRIANGLES",
		"CALL",
		"NV4097_SET_COLOR_CLEAR_VALUE = 0xff00ff00",
		"RET",
		"(3 nops)",
		"idle",
		"transform program (4 words):",
		"0: NOP END",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("listing misses %q:\n%s", want, text)
		}
	}
	// The subroutine runs before the nops that follow the call.
	if strings.Index(text, "CLEAR_VALUE") > strings.Index(text, "nops") {
		t.Fatalf("call not followed in order:\n%s", text)
	}
}

func TestStreamReportsFault(t *testing.T) {
	bus := memory.New()
	var out strings.Builder
	if err := Stream(&out, bus, 0, 8, 0); err == nil {
		t.Fatal("unmapped stream gave no error")
	}
	if !strings.Contains(out.String(), "error:") {
		t.Fatalf("fault not listed: %s", out.String())
	}
}

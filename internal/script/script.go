// Package script builds command buffer captures from Lua. A script emits
// methods and control words into one buffer mapped at IO offset 0 and may
// place data anywhere in guest memory:
//
//	method("NV4097_SET_COLOR_CLEAR_VALUE", 0xff00ff00)
//	method(reg("NV4097_CLEAR_SURFACE"), 0xf3)
//	local loop = here()
//	jump(loop)
package script

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/capture"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/fifo"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/texture"
)

// BufferEA is where the command buffer lives; IO offset 0 maps onto it.
const BufferEA = 0x2000_0000

// MaxBuffer is the largest command buffer a script may emit.
const MaxBuffer = 16 * memory.IOPage

type builder struct {
	b      fifo.Builder
	bus    *memory.Bus
	put    uint32
	putSet bool
}

// Build runs src and returns the capture it describes. name labels errors
// and becomes the capture title.
func Build(src, name string) (*capture.Capture, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	s := &builder{bus: memory.New()}
	s.register(L)
	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	if s.b.Len() > MaxBuffer {
		return nil, fmt.Errorf("script %s: command buffer is %d bytes, limit %d", name, s.b.Len(), MaxBuffer)
	}

	size := max((s.b.Len()+memory.IOPage-1)&^(memory.IOPage-1), memory.IOPage)
	s.bus.MapIO(0, BufferEA, size)
	s.bus.Load(BufferEA, s.b.Bytes())
	ctrl := fifo.NewControl()
	put := s.b.Len()
	if s.putSet {
		put = s.put
	}
	ctrl.SetPut(put)
	return capture.FromBus(s.bus, ctrl, name), nil
}

// BuildFile runs a script file.
func BuildFile(path string) (*capture.Capture, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(string(src), filepath.Base(path))
}

func (s *builder) register(L *lua.LState) {
	L.SetFuncs(L.G.Global, map[string]lua.LGFunction{
		"method":    s.method(false),
		"method_ni": s.method(true),
		"jump":      s.jump,
		"call":      s.call,
		"ret":       s.ret,
		"nop":       s.nop,
		"word":      s.word,
		"here":      s.here,
		"patch":     s.patch,
		"set_put":   s.setPut,
		"reg":       s.reg,
		"poke32":    s.poke32,
		"fill":      s.fill,
		"texture":   s.texture,
	})

	consts := L.NewTable()
	for k, v := range map[string]uint32{
		"POINTS":         gcm.PrimitivePoints,
		"LINES":          gcm.PrimitiveLines,
		"LINE_STRIP":     gcm.PrimitiveLineStrip,
		"TRIANGLES":      gcm.PrimitiveTriangles,
		"TRIANGLE_STRIP": gcm.PrimitiveTriangleStrip,
		"TRIANGLE_FAN":   gcm.PrimitiveTriangleFan,
		"QUADS":          gcm.PrimitiveQuads,
		"END":            gcm.PrimitiveNone,

		"A8R8G8B8": gcm.TexFormatA8R8G8B8,
		"R5G6B5":   gcm.TexFormatR5G6B5,
		"B8":       gcm.TexFormatB8,
		"DXT1":     gcm.TexFormatCompressedDXT1,
		"DXT23":    gcm.TexFormatCompressedDXT23,
		"DXT45":    gcm.TexFormatCompressedDXT45,
		"DEPTH16":  gcm.TexFormatDepth16,
		"DEPTH24":  gcm.TexFormatDepth24D8,
		"LN":       gcm.TexFormatLN,
		"UN":       gcm.TexFormatUN,

		"LOCAL": gcm.LocationLocal,
		"MAIN":  gcm.LocationMain,

		"LOCAL_BASE": memory.LocalBase,
	} {
		consts.RawSetString(k, lua.LNumber(v))
	}
	L.SetGlobal("rsx", consts)
}

func checkU32(L *lua.LState, n int) uint32 {
	v := L.CheckNumber(n)
	if v < 0 || v > 0xffffffff || v != lua.LNumber(int64(v)) {
		L.ArgError(n, fmt.Sprintf("%v is not a 32-bit word", v))
	}
	return uint32(int64(v))
}

// checkReg accepts a register id or a name.
func checkReg(L *lua.LState, n int) gcm.Reg {
	if s, ok := L.Get(n).(lua.LString); ok {
		r, ok := gcm.Lookup(string(s))
		if !ok {
			L.ArgError(n, fmt.Sprintf("unknown register %q", string(s)))
		}
		return r
	}
	v := checkU32(L, n)
	if v >= gcm.RegCount {
		L.ArgError(n, fmt.Sprintf("register %#x out of range", v))
	}
	return gcm.Reg(v)
}

func (s *builder) method(ni bool) lua.LGFunction {
	return func(L *lua.LState) int {
		r := checkReg(L, 1)
		args := make([]uint32, 0, L.GetTop())
		for i := 2; i <= L.GetTop(); i++ {
			args = append(args, checkU32(L, i))
		}
		if len(args) > fifo.MaxCount {
			L.RaiseError("method %s: %d arguments, limit %d", gcm.Name(r), len(args), fifo.MaxCount)
		}
		if ni {
			s.b.MethodNI(r, args...)
		} else {
			s.b.Method(r, args...)
		}
		return 0
	}
}

func (s *builder) jump(L *lua.LState) int {
	s.b.Jump(checkU32(L, 1))
	return 0
}

func (s *builder) call(L *lua.LState) int {
	s.b.Call(checkU32(L, 1))
	return 0
}

func (s *builder) ret(L *lua.LState) int {
	s.b.Return()
	return 0
}

func (s *builder) nop(L *lua.LState) int {
	s.b.Nop(L.OptInt(1, 1))
	return 0
}

func (s *builder) word(L *lua.LState) int {
	for i := 1; i <= L.GetTop(); i++ {
		s.b.Word(checkU32(L, i))
	}
	return 0
}

// here returns the offset of the next word, for jump targets.
func (s *builder) here(L *lua.LState) int {
	L.Push(lua.LNumber(s.b.Len()))
	return 1
}

func (s *builder) patch(L *lua.LState) int {
	off := checkU32(L, 1)
	if off%4 != 0 || off+4 > s.b.Len() {
		L.ArgError(1, fmt.Sprintf("offset %#x outside the buffer", off))
	}
	s.b.Patch(off, checkU32(L, 2))
	return 0
}

func (s *builder) setPut(L *lua.LState) int {
	s.put, s.putSet = checkU32(L, 1), true
	return 0
}

func (s *builder) reg(L *lua.LState) int {
	L.Push(lua.LNumber(checkReg(L, 1)))
	return 1
}

// poke32(ea, w1, w2, ...) stores big-endian words.
func (s *builder) poke32(L *lua.LState) int {
	ea := checkU32(L, 1)
	n := uint32(L.GetTop() - 1)
	s.bus.Alloc(ea, n*4)
	for i := uint32(0); i < n; i++ {
		s.bus.Write32(ea+4*i, checkU32(L, int(i)+2))
	}
	return 0
}

// fill(ea, n, byte).
func (s *builder) fill(L *lua.LState) int {
	ea, n := checkU32(L, 1), checkU32(L, 2)
	v := byte(L.OptInt(3, 0))
	if n > 64<<20 {
		L.ArgError(2, "fill larger than 64 MiB")
	}
	p := make([]byte, n)
	for i := range p {
		p[i] = v
	}
	s.bus.Load(ea, p)
	return 0
}

// texture(unit, {offset=, format=, width=, height=, ...}) programs a
// fragment texture unit with one method per register.
func (s *builder) texture(L *lua.LState) int {
	unit := L.CheckInt(1)
	if unit < 0 || unit >= gcm.TextureUnits {
		L.ArgError(1, fmt.Sprintf("texture unit %d", unit))
	}
	t := L.CheckTable(2)
	num := func(key string, def uint32) uint32 {
		if v, ok := t.RawGetString(key).(lua.LNumber); ok {
			return uint32(int64(v))
		}
		return def
	}
	dim := uint8(num("dim", gcm.TexDimension2D))
	f := texture.Fields{
		Offset:    num("offset", 0),
		Location:  uint8(num("location", gcm.LocationLocal)),
		Cubemap:   num("cube", 0) != 0,
		Dimension: dim,
		Format:    uint8(num("format", gcm.TexFormatA8R8G8B8)),
		MipMaps:   uint16(num("mips", 1)),
		Address: regs.TexAddressFields{
			WrapS: uint8(num("wrap_s", gcm.TexWrap)),
			WrapT: uint8(num("wrap_t", gcm.TexWrap)),
			WrapR: uint8(num("wrap_r", gcm.TexWrap)),
		},
		Control0: regs.TexControl0Fields{Enabled: num("enable", 1) != 0, MaxLOD: 0xc00},
		Remap:    regs.TexRemap(num("remap", uint32(regs.IdentityRemap))).Entries(),
		Filter: regs.TexFilterFields{
			Min: uint8(num("min", gcm.TexMinLinear)),
			Mag: uint8(num("mag", gcm.TexMagLinear)),
		},
		Width:  uint16(num("width", 1)),
		Height: uint16(num("height", 1)),
		Pitch:  num("pitch", 0),
		Depth:  uint16(num("depth", 1)),
	}
	for _, rv := range f.Registers(texture.FragmentUnit, unit) {
		s.b.Method(rv.Reg, rv.Value)
	}
	return 0
}

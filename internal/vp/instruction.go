// Package vp decodes the 4-word vertex program instructions uploaded through
// NV4097_SET_TRANSFORM_PROGRAM. It exposes opcodes, operands and
// predication bits; it does not translate programs.
package vp

import (
	"fmt"
	"strings"
)

// Register types of a source operand.
const (
	RegTemp     = 1
	RegInput    = 2
	RegConstant = 3
)

// Instruction is one decoded vertex program instruction.
type Instruction struct {
	Raw [4]uint32

	VecOp uint8
	ScaOp uint8

	Src [3]Operand

	InputIndex uint8  // v[] index for input operands
	ConstIndex uint16 // c[] index for constant operands
	IndexConst bool   // constant index is relative to the address register
	IndexInput bool

	DstTemp    uint8 // vector temp destination, 0x3f when unused
	ScaDstTemp uint8 // scalar temp destination, 0x3f when unused
	Dst        uint8 // output register, 0x1f when unused
	VecResult  bool  // vector result goes to the output register
	VecMask    Mask
	ScaMask    Mask
	Saturate   bool
	AddrRegSel uint8

	Cond       Condition
	CondRegSel uint8
	CondUpdate bool
	End        bool
}

// Operand is a 17-bit source operand.
type Operand struct {
	Type uint8
	Temp uint8
	Swz  [4]uint8 // x, y, z, w source components
	Neg  bool
	Abs  bool
}

// Condition holds the predication fields of D0.
type Condition struct {
	Test bool
	Op   uint8    // 3 bits: lt=1 eq=2 gt=4
	Swz  [4]uint8 // x, y, z, w
}

// Mask is an xyzw write mask with x in bit 3 and w in bit 0, matching the
// instruction encoding.
type Mask uint8

func (m Mask) String() string {
	if m == 0xf {
		return ""
	}
	var b strings.Builder
	b.WriteByte('.')
	for i, c := range "xyzw" {
		if m&(8>>i) != 0 {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func bits(v uint32, off, n uint) uint32 { return (v >> off) & (1<<n - 1) }

func decodeOperand(v uint32) Operand {
	return Operand{
		Type: uint8(bits(v, 0, 2)),
		Temp: uint8(bits(v, 2, 6)),
		Swz: [4]uint8{
			uint8(bits(v, 14, 2)),
			uint8(bits(v, 12, 2)),
			uint8(bits(v, 10, 2)),
			uint8(bits(v, 8, 2)),
		},
		Neg: bits(v, 16, 1) != 0,
	}
}

// Decode splits four instruction words into fields.
func Decode(w [4]uint32) Instruction {
	d0, d1, d2, d3 := w[0], w[1], w[2], w[3]
	in := Instruction{
		Raw:        w,
		VecOp:      uint8(bits(d1, 22, 5)),
		ScaOp:      uint8(bits(d1, 27, 5)),
		InputIndex: uint8(bits(d1, 8, 4)),
		ConstIndex: uint16(bits(d1, 12, 10)),
		IndexConst: bits(d3, 1, 1) != 0,
		IndexInput: bits(d0, 27, 1) != 0,
		DstTemp:    uint8(bits(d0, 15, 6)),
		ScaDstTemp: uint8(bits(d3, 7, 6)),
		Dst:        uint8(bits(d3, 2, 5)),
		VecResult:  bits(d0, 30, 1) != 0,
		VecMask:    Mask(bits(d3, 13, 4)),
		ScaMask:    Mask(bits(d3, 17, 4)),
		Saturate:   bits(d0, 26, 1) != 0,
		AddrRegSel: uint8(bits(d0, 24, 1)),
		Cond: Condition{
			Test: bits(d0, 13, 1) != 0,
			Op:   uint8(bits(d0, 10, 3)),
			Swz: [4]uint8{
				uint8(bits(d0, 8, 2)),
				uint8(bits(d0, 6, 2)),
				uint8(bits(d0, 4, 2)),
				uint8(bits(d0, 2, 2)),
			},
		},
		CondRegSel: uint8(bits(d0, 25, 1)),
		CondUpdate: bits(d0, 14, 1) != 0 || bits(d0, 29, 1) != 0,
		End:        bits(d3, 0, 1) != 0,
	}
	src0 := bits(d2, 23, 9) | bits(d1, 0, 8)<<9
	src1 := bits(d2, 6, 17)
	src2 := bits(d3, 21, 11) | bits(d2, 0, 6)<<11
	in.Src[0] = decodeOperand(src0)
	in.Src[1] = decodeOperand(src1)
	in.Src[2] = decodeOperand(src2)
	in.Src[0].Abs = bits(d0, 21, 1) != 0
	in.Src[1].Abs = bits(d0, 22, 1) != 0
	in.Src[2].Abs = bits(d0, 23, 1) != 0
	return in
}

// Program decodes a word stream into instructions, stopping after the
// instruction carrying the end flag.
func Program(words []uint32) []Instruction {
	var out []Instruction
	for i := 0; i+4 <= len(words); i += 4 {
		in := Decode([4]uint32{words[i], words[i+1], words[i+2], words[i+3]})
		out = append(out, in)
		if in.End {
			break
		}
	}
	return out
}

var vecNames = [32]string{
	"NOP", "MOV", "MUL", "ADD", "MAD", "DP3", "DPH", "DP4",
	"DST", "MIN", "MAX", "SLT", "SGE", "ARL", "FRC", "FLR",
	"SEQ", "SFL", "SGT", "SLE", "SNE", "STR", "SSG", "", "", "TXL",
}

var scaNames = [32]string{
	"NOP", "MOV", "RCP", "RCC", "RSQ", "EXP", "LOG", "LIT",
	"BRA", "BRI", "CAL", "CAI", "RET", "LG2", "EX2", "SIN",
	"COS", "BRB", "CLB", "PSH", "POP",
}

// Vector opcodes.
const (
	VecNOP = 0
	VecMOV = 1
	VecMUL = 2
	VecADD = 3
	VecMAD = 4
	VecARL = 13
	VecSFL = 17
	VecSTR = 21
	VecTXL = 25
)

// Scalar opcodes.
const (
	ScaNOP = 0
	ScaBRA = 8
	ScaBRI = 9
	ScaCAL = 10
	ScaCAI = 11
	ScaRET = 12
	ScaBRB = 17
	ScaCLB = 18
)

func VecName(op uint8) string {
	if n := vecNames[op&31]; n != "" {
		return n
	}
	return fmt.Sprintf("VEC_%02X", op)
}

func ScaName(op uint8) string {
	if n := scaNames[op&31]; n != "" {
		return n
	}
	return fmt.Sprintf("SCA_%02X", op)
}

// vecSources lists the source slots read by a vector opcode.
func vecSources(op uint8) []int {
	switch op {
	case VecNOP, VecSFL, VecSTR:
		return nil
	case VecMOV, VecARL, 14, 15, 22, VecTXL:
		return []int{0}
	case VecADD:
		return []int{0, 2}
	case VecMAD:
		return []int{0, 1, 2}
	}
	return []int{0, 1}
}

func (in Instruction) operand(slot int) string {
	o := in.Src[slot]
	var name string
	switch o.Type {
	case RegTemp:
		name = fmt.Sprintf("R%d", o.Temp)
	case RegInput:
		name = fmt.Sprintf("v[%d]", in.InputIndex)
	case RegConstant:
		if in.IndexConst {
			name = fmt.Sprintf("c[A0.%c+%d]", "xyzw"[in.AddrRegSel], in.ConstIndex)
		} else {
			name = fmt.Sprintf("c[%d]", in.ConstIndex)
		}
	default:
		name = "?"
	}
	if o.Swz != [4]uint8{0, 1, 2, 3} {
		var b strings.Builder
		b.WriteString(name)
		b.WriteByte('.')
		for _, c := range o.Swz {
			b.WriteByte("xyzw"[c])
		}
		name = b.String()
	}
	if o.Abs {
		name = "|" + name + "|"
	}
	if o.Neg {
		name = "-" + name
	}
	return name
}

func (in Instruction) vecDst() string {
	if in.VecResult || in.DstTemp == 0x3f {
		return fmt.Sprintf("o[%d]%s", in.Dst, in.VecMask)
	}
	return fmt.Sprintf("R%d%s", in.DstTemp, in.VecMask)
}

func (in Instruction) scaDst() string {
	if in.ScaDstTemp == 0x3f {
		return fmt.Sprintf("o[%d]%s", in.Dst, in.ScaMask)
	}
	return fmt.Sprintf("R%d%s", in.ScaDstTemp, in.ScaMask)
}

func (in Instruction) predicate() string {
	if !in.Cond.Test {
		return ""
	}
	ops := [8]string{"FL", "LT", "EQ", "LE", "GT", "NE", "GE", "TR"}
	return fmt.Sprintf(" (%s.%c)", ops[in.Cond.Op], "xyzw"[in.Cond.Swz[0]])
}

func (in Instruction) String() string {
	var parts []string
	if in.VecOp != VecNOP {
		s := VecName(in.VecOp)
		if in.Saturate {
			s += "_SAT"
		}
		args := []string{in.vecDst()}
		for _, slot := range vecSources(in.VecOp) {
			args = append(args, in.operand(slot))
		}
		parts = append(parts, s+" "+strings.Join(args, ", ")+in.predicate())
	}
	if in.ScaOp != ScaNOP {
		s := ScaName(in.ScaOp)
		switch in.ScaOp {
		case ScaBRA, ScaBRI, ScaCAL, ScaCAI, ScaBRB, ScaCLB:
			// Branch target lives in the instruction words.
			s += fmt.Sprintf(" %d", in.BranchTarget())
		case ScaRET:
		default:
			s += " " + in.scaDst() + ", " + in.operand(2)
		}
		parts = append(parts, s+in.predicate())
	}
	if len(parts) == 0 {
		parts = append(parts, "NOP")
	}
	out := strings.Join(parts, "; ")
	if in.End {
		out += " END"
	}
	return out
}

// BranchTarget returns the instruction index of a branch or call.
func (in Instruction) BranchTarget() uint32 {
	// iaddrh in D2 bits 0..5, iaddrl in D3 bits 29..31
	return bits(in.Raw[2], 0, 6)<<3 | bits(in.Raw[3], 29, 3)
}

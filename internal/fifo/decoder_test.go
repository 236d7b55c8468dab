package fifo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
)

const ringEA = 0x2000_0000

type write struct {
	reg gcm.Reg
	val uint32
}

type recorder struct{ writes []write }

func (r *recorder) Write(reg gcm.Reg, v uint32) { r.writes = append(r.writes, write{reg, v}) }

// newRing maps IO offset 0 onto a fresh buffer holding b.
func newRing(t *testing.T, b *Builder) (*memory.Bus, *recorder, *Decoder) {
	t.Helper()
	bus := memory.New()
	if !bus.MapIO(0, ringEA, memory.IOPage) {
		t.Fatal("MapIO failed")
	}
	bus.Alloc(ringEA, 4*memory.PageSize)
	bus.Write(ringEA, b.Bytes())
	rec := &recorder{}
	return bus, rec, NewDecoder(bus, rec, nil)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		cmd  uint32
		kind Kind
	}{
		{0x00000000, KindNop},
		{0x20001000, KindOldJump},
		{0x00001001, KindJump},
		{0x00001002, KindCall},
		{0x00020000, KindReturn},
		{Header(gcm.SetColorClearValue, 1, false), KindMethod},
		{Header(gcm.SetColorClearValue, 1, true), KindMethod},
		{Header(gcm.SetColorClearValue, 0, false), KindNop},
	}
	for _, c := range cases {
		if got := Classify(c.cmd).Kind; got != c.kind {
			t.Errorf("Classify(%08x) = %v, want %v", c.cmd, got, c.kind)
		}
	}
	m := Classify(Header(gcm.SetTextureOffset, 8, true))
	if m.Reg != gcm.SetTextureOffset || m.Count != 8 || !m.NonIncrement {
		t.Fatalf("header fields got %+v", m)
	}
	if j := Classify(0x20001000); j.Target != 0x1000 {
		t.Fatalf("old jump target got %x", j.Target)
	}
}

func TestStep_ClearColor(t *testing.T) {
	var b Builder
	b.MethodNI(gcm.SetColorClearValue, 0x00FF00FF)
	_, rec, d := newRing(t, &b)

	next, err := d.Step(0, b.Len())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if next != 8 {
		t.Fatalf("next get %d, want 8", next)
	}
	if len(rec.writes) != 1 || rec.writes[0] != (write{gcm.SetColorClearValue, 0x00FF00FF}) {
		t.Fatalf("writes got %+v", rec.writes)
	}
}

func TestStep_IncrementModes(t *testing.T) {
	args := []uint32{1, 2, 3, 4, 5}
	for _, ni := range []bool{false, true} {
		var b Builder
		if ni {
			b.MethodNI(gcm.SetTransformConstant, args...)
		} else {
			b.Method(gcm.SetTransformConstant, args...)
		}
		_, rec, d := newRing(t, &b)
		if _, err := d.RunUntilIdle(0, b.Len(), 0); err != nil {
			t.Fatalf("ni=%v: %v", ni, err)
		}
		if len(rec.writes) != len(args) {
			t.Fatalf("ni=%v: %d writes, want %d", ni, len(rec.writes), len(args))
		}
		hits := map[gcm.Reg]int{}
		for _, w := range rec.writes {
			hits[w.reg]++
		}
		if ni {
			if hits[gcm.SetTransformConstant] != len(args) {
				t.Fatalf("non-increment hits %v", hits)
			}
			continue
		}
		for i := range args {
			if hits[gcm.SetTransformConstant+gcm.Reg(i)] != 1 {
				t.Fatalf("increment hits %v", hits)
			}
		}
	}
}

func TestStep_IncrementWrapsMethodSpace(t *testing.T) {
	var b Builder
	b.Method(gcm.Reg(0x3ffe), 1, 2, 3, 4)
	_, rec, d := newRing(t, &b)
	if _, err := d.Step(0, b.Len()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	want := []gcm.Reg{0x3ffe, 0x3fff, 0, 1}
	if len(rec.writes) != len(want) {
		t.Fatalf("writes got %+v", rec.writes)
	}
	for i, w := range rec.writes {
		if w.reg != want[i] {
			t.Fatalf("write %d went to %#x, want %#x", i, w.reg, want[i])
		}
	}
}

func TestStep_EmptyMethod(t *testing.T) {
	var b Builder
	// Count zero with bit 16 set is not a nop pattern.
	b.Word(gcm.SetBlendEnable.Addr() | 1<<16)
	_, rec, d := newRing(t, &b)
	next, err := d.Step(0, b.Len())
	if err != nil || next != 4 {
		t.Fatalf("Step got %d, %v", next, err)
	}
	if len(rec.writes) != 0 {
		t.Fatalf("empty method dispatched %+v", rec.writes)
	}
	if d.Stats.Methods != 1 || d.Stats.Nops != 0 {
		t.Fatalf("counted as methods=%d nops=%d, want a method", d.Stats.Methods, d.Stats.Nops)
	}
}

func TestStep_JumpCallReturn(t *testing.T) {
	var b Builder
	b.Call(0x100)                     // 0x000
	b.Method(gcm.SetDepthFunc, 0x201) // 0x004
	b.Jump(0x200)                     // 0x00c
	for b.Len() < 0x100 {
		b.Nop(1)
	}
	b.Method(gcm.SetDepthMask, 1) // 0x100
	b.Return()                    // 0x108
	for b.Len() < 0x200 {
		b.Nop(1)
	}
	_, rec, d := newRing(t, &b)

	get, err := d.RunUntilIdle(0, 0x200, 0)
	if err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}
	if get != 0x200 {
		t.Fatalf("get %#x, want 0x200", get)
	}
	if len(rec.writes) != 2 || rec.writes[0].reg != gcm.SetDepthMask || rec.writes[1].reg != gcm.SetDepthFunc {
		t.Fatalf("writes order %+v", rec.writes)
	}
	if d.CallDepth() != 0 {
		t.Fatalf("call depth %d after return", d.CallDepth())
	}
	if d.Stats.Calls != 1 || d.Stats.Returns != 1 || d.Stats.Jumps != 1 {
		t.Fatalf("stats %+v", d.Stats)
	}
}

func TestStep_ReturnWithoutCallDiscards(t *testing.T) {
	var b Builder
	b.Return()
	b.Method(gcm.SetDepthFunc, 0x201)
	_, rec, d := newRing(t, &b)
	next, err := d.Step(0, b.Len())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if next != b.Len() {
		t.Fatalf("next %#x, want put %#x", next, b.Len())
	}
	if len(rec.writes) != 0 {
		t.Fatal("discarded queue was executed")
	}
}

func TestStep_JumpToSelfSpins(t *testing.T) {
	var b Builder
	b.Nop(1)
	b.Jump(4)
	_, _, d := newRing(t, &b)
	get, err := d.RunUntilIdle(0, 0x1000, 0)
	if err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}
	if get != 4 || !d.Spinning() {
		t.Fatalf("get %#x spinning=%v, want 4 true", get, d.Spinning())
	}
}

func TestStep_NopRunCoalesced(t *testing.T) {
	var b Builder
	b.Nop(10)
	b.Method(gcm.SetDepthFunc, 0x201)
	_, rec, d := newRing(t, &b)
	next, err := d.Step(0, b.Len())
	if err != nil || next != 40 {
		t.Fatalf("Step got %d, %v; want 40", next, err)
	}
	if d.Stats.Nops != 10 || len(rec.writes) != 0 {
		t.Fatalf("nops %d writes %d", d.Stats.Nops, len(rec.writes))
	}
}

func TestStep_Truncated(t *testing.T) {
	var b Builder
	b.Method(gcm.SetTransformConstant, 1, 2, 3, 4)
	_, rec, d := newRing(t, &b)
	next, err := d.Step(0, 12) // put cuts the argument list
	var te *TruncatedError
	if !errors.As(err, &te) || !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want TruncatedError", err)
	}
	if next != 0 || len(rec.writes) != 0 {
		t.Fatalf("next %d writes %d after truncation", next, len(rec.writes))
	}
}

func TestStep_AddressErrorMidArguments(t *testing.T) {
	bus := memory.New()
	bus.MapIO(0, ringEA, memory.IOPage)
	bus.Alloc(ringEA, memory.PageSize) // second page left unbacked

	hdr := uint32(memory.PageSize - 8)
	var b Builder
	b.Method(gcm.SetTransformConstant, 0xa, 0xb) // first arg fits, second does not
	bus.Write(ringEA+hdr, b.Bytes()[:8])

	rec := &recorder{}
	d := NewDecoder(bus, rec, nil)
	next, err := d.Step(hdr, hdr+0x100)
	var ae *AddressError
	if !errors.As(err, &ae) || !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("err = %v, want AddressError", err)
	}
	if ae.Applied != 1 || ae.Get != memory.PageSize || ae.Header != hdr {
		t.Fatalf("AddressError %+v", ae)
	}
	if next != hdr {
		t.Fatalf("cursor moved to %#x", next)
	}
	if len(rec.writes) != 1 || rec.writes[0] != (write{gcm.SetTransformConstant, 0xa}) {
		t.Fatalf("writes %+v, want exactly the first argument", rec.writes)
	}
}

func TestStep_UnmappedGet(t *testing.T) {
	var b Builder
	_, _, d := newRing(t, &b)
	if _, err := d.Step(4*memory.IOPage, 0); !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("err = %v", err)
	}
}

func TestPuller_RunAndCancel(t *testing.T) {
	var b Builder
	b.Method(gcm.SetDepthFunc, 0x201)
	b.Method(gcm.SetDepthMask, 1)
	_, rec, d := newRing(t, &b)

	ctrl := NewControl()
	idle := make(chan struct{}, 4)
	p := &Puller{Ctrl: ctrl, Dec: d, OnIdle: func() { idle <- struct{}{} }}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	<-idle
	ctrl.SetPut(8)
	<-idle
	if ctrl.Get() != 8 {
		t.Fatalf("get %d after first put", ctrl.Get())
	}
	ctrl.SetPut(b.Len())
	<-idle
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
	if len(rec.writes) != 2 {
		t.Fatalf("writes %+v", rec.writes)
	}
}

func TestPuller_FaultStops(t *testing.T) {
	var b Builder
	b.Method(gcm.SetDepthFunc, 0x201, 0x202)
	_, _, d := newRing(t, &b)
	ctrl := NewControl()
	ctrl.SetPut(8) // truncates the method
	p := &Puller{Ctrl: ctrl, Dec: d}
	if err := p.Run(context.Background()); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Run returned %v", err)
	}
	if ctrl.Get() != 0 {
		t.Fatalf("get %d, want 0", ctrl.Get())
	}
}

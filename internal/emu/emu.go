// Package emu runs a command buffer session: guest memory, the command
// stream decoder, method dispatch and a renderer.
package emu

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/backend"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/capture"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/diag"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/fifo"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/method"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/script"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/texture"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/upload"
)

var errUnmapped = errors.New("emu: texture source not in guest memory")

// Stats counts the work of a session.
type Stats struct {
	Draws         uint64
	Clears        uint64
	Flips         uint64
	StateChanges  uint64
	Uploads       uint64
	Placeholders  uint64
	CacheHits     uint64
	Invalidations uint64
	Cached        int

	Decoder fifo.Stats
	Method  method.Stats
}

// Machine is one GPU session. It is the method.Observer of its own
// dispatcher and is driven by a single goroutine.
type Machine struct {
	cfg Config
	log *slog.Logger

	bus  *memory.Bus
	ctrl *fifo.Control
	regs *regs.File
	disp *method.Dispatcher
	dec  *fifo.Decoder

	r     backend.Renderer
	async *backend.Async
	cache *texCache

	title     string
	labelBase uint32
	stats     Stats
}

// New builds an empty session rendering to r. A nil r drops all output.
func New(cfg Config, r backend.Renderer) *Machine {
	cfg.Defaults()
	if r == nil {
		r = backend.Null{}
	}
	m := &Machine{cfg: cfg, log: diag.Or(cfg.Logger), cache: newTexCache(cfg.CacheSize)}
	if cfg.Async {
		m.async = backend.NewAsync(r, cfg.QueueDepth)
		r = m.async
	}
	m.r = r
	m.reset(cfg.LabelBase)
	return m
}

func (m *Machine) reset(labelBase uint32) {
	m.labelBase = labelBase
	m.bus = memory.New()
	m.bus.Alloc(labelBase, labelSize)
	m.ctrl = fifo.NewControl()
	m.regs = regs.New()
	m.disp = method.New(method.Config{LabelBase: labelBase}, m.regs, m.bus, m, m.log)
	m.disp.Trace = m.cfg.Trace
	m.disp.OnReference = m.ctrl.SetRef
	m.dec = fifo.NewDecoder(m.bus, m.disp, m.log)
	m.dec.Trace = m.cfg.Trace
	m.cache.reset()
	m.stats = Stats{}
}

// LoadCapture replaces the session with the capture's memory image and
// control block.
func (m *Machine) LoadCapture(c *capture.Capture) error {
	lb := c.Header.LabelBase
	if lb == 0 {
		lb = m.cfg.LabelBase
	}
	m.reset(lb)
	m.title = c.Header.Title
	if err := c.Apply(m.bus, m.ctrl); err != nil {
		return err
	}
	m.log.Info("emu: capture loaded", "title", m.title, "get", m.ctrl.Get(), "put", m.ctrl.Put(),
		"blocks", len(c.Blocks))
	return nil
}

// LoadFile loads a capture file, or builds one when path is a Lua script.
func (m *Machine) LoadFile(path string) error {
	var (
		c   *capture.Capture
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		c, err = script.BuildFile(path)
	} else {
		c, err = capture.LoadFile(path)
	}
	if err != nil {
		return err
	}
	return m.LoadCapture(c)
}

func (m *Machine) Bus() *memory.Bus               { return m.bus }
func (m *Machine) Control() *fifo.Control         { return m.ctrl }
func (m *Machine) Regs() *regs.File               { return m.regs }
func (m *Machine) Dispatcher() *method.Dispatcher { return m.disp }
func (m *Machine) Decoder() *fifo.Decoder         { return m.dec }
func (m *Machine) Title() string                  { return m.title }

// Stats returns a copy of the counters. Not safe while Run is active.
func (m *Machine) Stats() Stats {
	s := m.stats
	s.Decoder = m.dec.Stats
	s.Method = m.disp.Stats()
	s.Cached = m.cache.len()
	return s
}

// Idle reports whether the stream has drained or parked on a jump to
// itself.
func (m *Machine) Idle() bool {
	return m.ctrl.Get() == m.ctrl.Put() || m.dec.Spinning()
}

// RunUntilIdle decodes until the stream is idle or faults.
func (m *Machine) RunUntilIdle() error { return m.run(m.cfg.StepLimit) }

// Step decodes at most n commands.
func (m *Machine) Step(n int) error {
	if n <= 0 {
		return nil
	}
	return m.run(n)
}

func (m *Machine) run(limit int) error {
	get, err := m.dec.RunUntilIdle(m.ctrl.Get(), m.ctrl.Put(), limit)
	m.ctrl.SetGet(get)
	if err != nil {
		m.log.Error("emu: command stream fault", "get", get, "err", err)
		return fmt.Errorf("emu: %w", err)
	}
	return nil
}

// Run follows the control block until ctx ends or the stream faults. The
// guest side publishes work with Control().SetPut.
func (m *Machine) Run(ctx context.Context) error {
	p := &fifo.Puller{Ctrl: m.ctrl, Dec: m.dec, OnIdle: m.Sync}
	err := p.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil && ctx.Err() == nil {
		m.log.Error("emu: command stream fault", "get", m.ctrl.Get(), "err", err)
		return fmt.Errorf("emu: %w", err)
	}
	return err
}

// Sync waits for an asynchronous renderer to finish queued work.
func (m *Machine) Sync() {
	if m.async != nil {
		m.async.Sync()
	}
}

// Close drains and stops an asynchronous renderer.
func (m *Machine) Close() {
	if m.async != nil {
		m.async.Close()
	}
}

func (m *Machine) StateChanged(gcm.Reg, method.Dirty) { m.stats.StateChanges++ }

func (m *Machine) Draw(d *method.Draw) {
	req := backend.DrawFor(d)
	req.Bindings = m.bind(d)
	m.stats.Draws++
	m.r.Draw(req)
}

func (m *Machine) Clear(c *method.Clear) {
	m.stats.Clears++
	m.r.Clear(backend.ClearFor(c))
}

func (m *Machine) Flip(buffer uint32) {
	m.stats.Flips++
	m.r.Flip(buffer)
}

// Transfer drops cached textures the GPU has written over.
func (m *Machine) Transfer(dst uint32, n int) {
	m.stats.Invalidations += uint64(m.cache.invalidate(dst, n))
}

// bind resolves the enabled texture units of a draw, uploading the ones
// that changed since the previous draw or are not cached.
func (m *Machine) bind(d *method.Draw) []backend.Binding {
	var out []backend.Binding
	for unit := 0; unit < gcm.TextureUnits; unit++ {
		t := texture.Fragment(d.Regs, unit)
		if !t.Enabled() {
			continue
		}
		key := m.texture(t, d.FragmentTextures&(1<<unit) != 0)
		out = append(out, backend.Binding{Unit: unit, Key: key, Sampler: backend.SamplerFor(t)})
	}
	for unit := 0; unit < gcm.VertexTextureUnits; unit++ {
		t := texture.Vertex(d.Regs, unit)
		if !t.Enabled() {
			continue
		}
		key := m.texture(t, d.VertexTextures&(1<<unit) != 0)
		out = append(out, backend.Binding{Unit: unit, Vertex: true, Key: key, Sampler: backend.SamplerFor(t)})
	}
	return out
}

func (m *Machine) texture(t texture.Descriptor, dirty bool) backend.TextureKey {
	key := backend.KeyFor(t)
	if !dirty {
		if _, ok := m.cache.get(key); ok {
			m.stats.CacheHits++
			return key
		}
	}
	up, ea, size := m.transcode(t)
	m.cache.put(key, ea, size, up)
	m.stats.Uploads++
	m.r.UploadTexture(up)
	return key
}

// transcode converts the unit's texture, substituting the placeholder when
// the source cannot be converted.
func (m *Machine) transcode(t texture.Descriptor) (up *backend.TextureUpload, ea uint32, size int) {
	p := t.Params()
	res, ea, size, err := m.convert(t, p)
	if err == nil {
		return backend.UploadFor(t, res, false), ea, size
	}
	level := slog.LevelError
	if errors.Is(err, upload.ErrUnsupported) {
		level = slog.LevelWarn
	}
	m.log.Log(context.Background(), level, "emu: texture replaced by placeholder",
		"kind", t.Kind, "unit", t.Unit, "format", upload.FormatName(t.Format()), "err", err)
	m.stats.Placeholders++
	return backend.UploadFor(t, upload.Placeholder(p.Width, p.Height), true), ea, size
}

func (m *Machine) convert(t texture.Descriptor, p upload.Params) (*upload.Result, uint32, int, error) {
	l, err := upload.Compute(p, m.cfg.Upload)
	if err != nil {
		return nil, 0, 0, err
	}
	ea, ok := m.disp.Locate(uint32(t.Location()), t.Offset())
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: location %d offset %#x", errUnmapped, t.Location(), t.Offset())
	}
	src, ok := m.bus.Read(ea, l.SrcSize)
	if !ok {
		return nil, ea, l.SrcSize, fmt.Errorf("%w: %#x bytes at %#x", errUnmapped, l.SrcSize, ea)
	}
	res, err := upload.Transcode(p, src, m.cfg.Upload)
	return res, ea, l.SrcSize, err
}

type machineState struct {
	Image []byte // capture encoding of memory, IO map and control block
	Regs  []byte
}

// SaveState snapshots memory, the control block and the register file.
// The decoder call stack and upload cursors are not kept.
func (m *Machine) SaveState() []byte {
	img := capture.FromBus(m.bus, m.ctrl, m.title)
	img.Header.LabelBase = m.labelBase
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(machineState{Image: img.Encode(), Regs: m.regs.SaveState()})
	return buf.Bytes()
}

func (m *Machine) LoadState(data []byte) error {
	var s machineState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("emu: decode state: %w", err)
	}
	img, err := capture.Load(s.Image)
	if err != nil {
		return fmt.Errorf("emu: state image: %w", err)
	}
	if err := m.LoadCapture(img); err != nil {
		return err
	}
	return m.regs.LoadState(s.Regs)
}

func (m *Machine) SaveStateToFile(path string) error {
	return os.WriteFile(path, m.SaveState(), 0644)
}

func (m *Machine) LoadStateFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return m.LoadState(data)
}

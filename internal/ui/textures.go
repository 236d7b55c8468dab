package ui

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/backend"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/upload"
)

const maxShown = 64

// shown is one uploaded texture. Pixels arrive from the renderer side and
// become an ebiten image on the next Draw.
type shown struct {
	key     backend.TextureKey
	label   string
	pix     *image.NRGBA
	img     *ebiten.Image
	pending bool
}

// gallery collects what the machine renders. The Renderer methods may run
// on the async renderer goroutine, so everything is behind mu.
type gallery struct {
	mu sync.Mutex

	items  []*shown
	sel    int
	follow bool // select the texture of the latest draw

	draws, uploads, clears, flips int
	clear                         color.NRGBA
	lastErr                       string
}

func (g *gallery) Draw(r *backend.DrawRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.draws++
	if !g.follow || len(r.Bindings) == 0 {
		return
	}
	for i, s := range g.items {
		if s.key == r.Bindings[0].Key {
			g.sel = i
			return
		}
	}
}

func (g *gallery) UploadTexture(u *backend.TextureUpload) {
	pix, err := u.Result.DecodeRGBA(0)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.uploads++
	if err != nil {
		g.lastErr = err.Error()
		return
	}
	label := fmt.Sprintf("%s %dx%d @%#x", upload.FormatName(u.Key.Format), u.Key.Width, u.Key.Height, u.Key.Offset)
	if u.Key.Levels > 1 {
		label += fmt.Sprintf(" %d mips", u.Key.Levels)
	}
	if u.Placeholder {
		label += " (placeholder)"
	}
	for _, s := range g.items {
		if s.key == u.Key {
			s.pix, s.label, s.pending = pix, label, true
			return
		}
	}
	if len(g.items) == maxShown {
		g.items[0].dispose()
		g.items = g.items[1:]
		g.sel = max(g.sel-1, 0)
	}
	g.items = append(g.items, &shown{key: u.Key, label: label, pix: pix, pending: true})
}

func (g *gallery) Clear(c *backend.ClearRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clears++
	if c.Mask.Color() {
		g.clear = color.NRGBA{
			R: uint8(c.Color[0] * 255),
			G: uint8(c.Color[1] * 255),
			B: uint8(c.Color[2] * 255),
			A: 255,
		}
	}
}

func (g *gallery) Flip(uint32) {
	g.mu.Lock()
	g.flips++
	g.mu.Unlock()
}

func (g *gallery) step(d int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := len(g.items); n > 0 {
		g.sel = (g.sel + d + n) % n
	}
}

// current returns the selected texture with its ebiten image up to date.
func (g *gallery) current() *shown {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.items) == 0 {
		return nil
	}
	s := g.items[min(g.sel, len(g.items)-1)]
	if s.pending {
		s.dispose()
		s.img = ebiten.NewImageFromImage(s.pix)
		s.pending = false
	}
	return s
}

func (g *gallery) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range g.items {
		s.dispose()
	}
	g.items, g.sel = nil, 0
	g.draws, g.uploads, g.clears, g.flips = 0, 0, 0, 0
	g.clear, g.lastErr = color.NRGBA{}, ""
}

func (s *shown) dispose() {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
}

type status struct {
	draws, uploads, clears, flips int

	clear  color.NRGBA
	label  string
	index  int
	count  int
	follow bool
	err    string
}

func (g *gallery) status() status {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := status{
		draws: g.draws, uploads: g.uploads, clears: g.clears, flips: g.flips,
		clear: g.clear, count: len(g.items), follow: g.follow, err: g.lastErr,
	}
	if st.count > 0 {
		st.index = min(g.sel, st.count-1)
		st.label = g.items[st.index].label
	}
	return st
}

func (g *gallery) setFollow(on bool) {
	g.mu.Lock()
	g.follow = on
	g.mu.Unlock()
}

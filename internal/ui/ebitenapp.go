// Package ui is an ebiten viewer for a running GPU session. It shows the
// textures the machine uploads and a status bar with the session counters.
package ui

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/backend"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/emu"
)

const statusHeight = 18

type App struct {
	cfg  Config
	m    *emu.Machine
	g    *gallery
	path string

	paused  bool
	fast    bool
	overlay bool
	stepErr error

	// menu
	showMenu    bool
	menuMode    string // "", "slot", "capture"
	menuIdx     int
	currentSlot int
	files       []string
	fileSel     int
	fileOff     int

	toastMsg   string
	toastUntil time.Time
}

func NewApp(cfg Config) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width*cfg.Scale, cfg.Height*cfg.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return &App{cfg: cfg, g: &gallery{follow: true}, overlay: cfg.Overlay}
}

// Renderer is what the machine should render to.
func (a *App) Renderer() backend.Renderer { return a.g }

// Attach sets the machine driven by Update. It must render to Renderer.
func (a *App) Attach(m *emu.Machine) { a.m = m }

// Load replaces the running capture.
func (a *App) Load(path string) error {
	a.g.reset()
	if err := a.m.LoadFile(path); err != nil {
		return err
	}
	a.path, a.stepErr, a.paused = path, nil, false
	title := a.m.Title()
	if title == "" {
		title = filepath.Base(path)
	}
	ebiten.SetWindowTitle(a.cfg.Title + " - " + title)
	return nil
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.showMenu = !a.showMenu
		a.menuMode, a.menuIdx = "", 0
	}
	if a.showMenu {
		switch a.menuMode {
		case "slot":
			a.updateSlotMenu()
		case "capture":
			a.updateCaptureMenu()
		default:
			a.updateMainMenu()
		}
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.paused = !a.paused
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		a.g.setFollow(false)
		a.g.step(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		a.g.setFollow(false)
		a.g.step(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		a.g.setFollow(!a.g.status().follow)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && a.path != "" {
		if err := a.Load(a.path); err != nil {
			a.toast("Reload failed: " + err.Error())
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		a.overlay = !a.overlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.saveSlot(a.currentSlot)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		a.loadSlot(a.currentSlot)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if name, err := a.saveScreenshot(); err != nil {
			a.toast("Screenshot failed: " + err.Error())
		} else {
			a.toast("Saved " + name)
		}
	}

	if a.m == nil || a.stepErr != nil {
		return nil
	}
	steps := 0
	switch {
	case a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN):
		steps = 1
	case !a.paused:
		steps = a.cfg.StepsPerFrame
		if a.fast {
			steps *= 8
		}
	}
	if steps > 0 && !a.m.Idle() {
		if err := a.m.Step(steps); err != nil {
			a.stepErr = err
			a.toast(err.Error())
		}
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	st := a.g.status()
	screen.Fill(st.clear)

	if s := a.g.current(); s != nil {
		w, h := float64(s.pix.Bounds().Dx()), float64(s.pix.Bounds().Dy())
		aw, ah := float64(a.cfg.Width), float64(a.cfg.Height-statusHeight)
		scale := min(aw/w, ah/h)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate((aw-w*scale)/2, (ah-h*scale)/2)
		screen.DrawImage(s.img, op)
	}

	if a.overlay {
		a.drawStatusBar(screen, st)
	}
	if a.showMenu {
		overlay := ebiten.NewImage(a.cfg.Width, a.cfg.Height)
		overlay.Fill(color.RGBA{0, 0, 0, 160})
		screen.DrawImage(overlay, nil)
		overlay.Deallocate()
		switch a.menuMode {
		case "slot":
			a.drawSlotMenu(screen)
		case "capture":
			a.drawCaptureMenu(screen)
		default:
			a.drawMainMenu(screen)
		}
	}
	if a.toastMsg != "" && time.Now().Before(a.toastUntil) {
		ebitenutil.DebugPrintAt(screen, a.truncateText(a.toastMsg, a.maxCharsForText(10)), 10, a.cfg.Height-statusHeight-18)
	}
}

func (a *App) drawStatusBar(screen *ebiten.Image, st status) {
	face := basicfont.Face7x13
	y := a.cfg.Height - 4
	bar := ebiten.NewImage(a.cfg.Width, statusHeight)
	bar.Fill(color.RGBA{16, 16, 16, 220})
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, float64(a.cfg.Height-statusHeight))
	screen.DrawImage(bar, op)
	bar.Deallocate()

	left := fmt.Sprintf("draws %d  uploads %d  clears %d  flips %d", st.draws, st.uploads, st.clears, st.flips)
	text.Draw(screen, left, face, 6, y, color.RGBA{190, 190, 190, 255})

	state, c := "RUN", color.RGBA{0, 220, 90, 255}
	switch {
	case a.stepErr != nil:
		state, c = "FAULT", color.RGBA{230, 60, 60, 255}
	case a.paused:
		state, c = "PAUSED", color.RGBA{230, 200, 60, 255}
	case a.m != nil && a.m.Idle():
		state, c = "IDLE", color.RGBA{120, 120, 120, 255}
	}
	x := 6 + text.BoundString(face, left).Dx() + 12
	text.Draw(screen, state, face, x, y, c)
	x += text.BoundString(face, state).Dx() + 12

	if st.count > 0 {
		tex := fmt.Sprintf("[%d/%d] %s", st.index+1, st.count, st.label)
		if st.follow {
			tex += " *"
		}
		text.Draw(screen, a.truncateText(tex, (a.cfg.Width-x)/7), face, x, y, color.RGBA{160, 160, 160, 255})
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return a.cfg.Width, a.cfg.Height }

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(3 * time.Second)
}

func (a *App) maxCharsForText(x int) int { return max((a.cfg.Width-x)/6, 1) }

func (a *App) truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func (a *App) statePath(slot int) string {
	base := "rsx"
	if a.path != "" {
		base = strings.TrimSuffix(filepath.Base(a.path), filepath.Ext(a.path))
	}
	return filepath.Join(a.cfg.StateDir, fmt.Sprintf("%s.slot%d.state", base, slot+1))
}

func (a *App) saveSlot(slot int) {
	if a.m == nil {
		return
	}
	if err := a.m.SaveStateToFile(a.statePath(slot)); err != nil {
		a.toast("Save failed: " + err.Error())
		return
	}
	a.toast(fmt.Sprintf("Saved slot %d", slot+1))
}

func (a *App) loadSlot(slot int) {
	if a.m == nil {
		return
	}
	if _, err := os.Stat(a.statePath(slot)); err != nil {
		a.toast("Slot is empty")
		return
	}
	a.g.reset()
	if err := a.m.LoadStateFromFile(a.statePath(slot)); err != nil {
		a.toast("Load failed: " + err.Error())
		return
	}
	a.stepErr = nil
	a.toast(fmt.Sprintf("Loaded slot %d", slot+1))
}

// saveScreenshot writes the selected texture as a PNG.
func (a *App) saveScreenshot() (string, error) {
	s := a.g.current()
	if s == nil {
		return "", fmt.Errorf("no texture uploaded")
	}
	name := fmt.Sprintf("texture_%s.png", time.Now().Format("20060102_150405"))
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return name, png.Encode(f, s.pix)
}

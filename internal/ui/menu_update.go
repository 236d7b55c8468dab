package ui

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const menuItems = 6

func (a *App) updateMainMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < menuItems-1 {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		switch a.menuIdx {
		case 0:
			a.saveSlot(a.currentSlot)
		case 1:
			a.loadSlot(a.currentSlot)
		case 2:
			a.menuMode = "slot"
			a.menuIdx = a.currentSlot
		case 3:
			a.files = a.findCaptures()
			a.fileSel, a.fileOff = 0, 0
			a.menuMode = "capture"
		case 4:
			if a.path != "" {
				if err := a.Load(a.path); err != nil {
					a.toast("Reload failed: " + err.Error())
				}
			}
			a.showMenu = false
		case 5:
			a.showMenu = false
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.showMenu = false
	}
}

func (a *App) updateSlotMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < 3 {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.currentSlot = a.menuIdx
		a.menuMode, a.menuIdx = "", 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode, a.menuIdx = "", 2
	}
}

func (a *App) updateCaptureMenu() {
	rows := a.captureRows()
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.fileSel > 0 {
		a.fileSel--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.fileSel < len(a.files)-1 {
		a.fileSel++
	}
	if a.fileSel < a.fileOff {
		a.fileOff = a.fileSel
	}
	if a.fileSel >= a.fileOff+rows {
		a.fileOff = a.fileSel - rows + 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && len(a.files) > 0 {
		path := a.files[a.fileSel]
		if err := a.Load(path); err != nil {
			a.toast("Load failed: " + err.Error())
		} else {
			a.toast("Loaded " + filepath.Base(path))
			a.showMenu = false
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode, a.menuIdx = "", 3
	}
}

// findCaptures lists capture files and scripts under CapturesDir.
func (a *App) findCaptures() []string {
	var out []string
	_ = filepath.WalkDir(a.cfg.CapturesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".rsxc", ".lua":
			out = append(out, path)
		}
		return nil
	})
	slices.Sort(out)
	return out
}

func (a *App) captureRows() int { return max((a.cfg.Height-40-statusHeight)/14, 1) }

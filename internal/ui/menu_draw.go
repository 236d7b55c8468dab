package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

func (a *App) drawMainMenu(screen *ebiten.Image) {
	lines := []string{
		"Menu:",
		fmt.Sprintf("  Save state (slot %d)", a.currentSlot+1),
		fmt.Sprintf("  Load state (slot %d)", a.currentSlot+1),
		"  Select Slot",
		"  Open capture",
		"  Reload",
		"  Close",
	}
	for i, s := range lines {
		prefix := "  "
		if i == a.menuIdx+1 {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 10, 10+i*14)
	}
	hint := "Space: Pause  N: Step  Left/Right: Texture  F: Follow  F5/F9: Save/Load  F12: PNG"
	ebitenutil.DebugPrintAt(screen, a.truncateText(hint, a.maxCharsForText(10)), 10, 10+len(lines)*14)
}

func (a *App) drawSlotMenu(screen *ebiten.Image) {
	lines := []string{"Select Slot:"}
	for i := 0; i < 4; i++ {
		state := "[empty]"
		if _, err := os.Stat(a.statePath(i)); err == nil {
			state = ""
		}
		lines = append(lines, fmt.Sprintf("  %d %s", i+1, state))
	}
	for i, s := range lines {
		prefix := "  "
		if i == a.menuIdx+1 {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 10, 10+i*14)
	}
}

func (a *App) drawCaptureMenu(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "Open capture (Enter to load, Backspace to return)", 10, 10)
	ebitenutil.DebugPrintAt(screen, a.truncateText("Dir: "+a.cfg.CapturesDir, a.maxCharsForText(10)), 10, 24)
	if len(a.files) == 0 {
		ebitenutil.DebugPrintAt(screen, "No captures found", 10, 40)
		return
	}
	baseY := 40
	rows := a.captureRows()
	end := min(a.fileOff+rows, len(a.files))
	for i := a.fileOff; i < end; i++ {
		prefix := "  "
		if i == a.fileSel {
			prefix = "> "
		}
		rel, err := filepath.Rel(a.cfg.CapturesDir, a.files[i])
		if err != nil {
			rel = a.files[i]
		}
		ebitenutil.DebugPrintAt(screen, a.truncateText(prefix+rel, a.maxCharsForText(10)), 10, baseY+(i-a.fileOff)*14)
	}
	if a.fileOff > 0 {
		ebitenutil.DebugPrintAt(screen, "^", 2, baseY)
	}
	if end < len(a.files) {
		ebitenutil.DebugPrintAt(screen, "v", 2, baseY+(rows-1)*14)
	}
}

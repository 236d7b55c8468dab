package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/backend"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/diag"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/script"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/ui"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/upload"
)

type CLIFlags struct {
	Input    string // capture (.rsxc) or Lua script
	Compile  string // write the capture built from a script here and exit
	State    string // save state to load after the input
	Scale    int
	Title    string
	Trace    bool
	Async    bool
	Workers  int
	Captures string

	// headless
	Headless bool
	Steps    int
	Frames   int // minimum flips the stream must issue
	PNGOut   string
	PNGScale int
	Expect   string // expected CRC32 of the last uploaded texture
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.Input, "in", "", "capture (.rsxc) or Lua script (.lua)")
	flag.StringVar(&f.Compile, "compile", "", "write the capture built from -in to this path and exit")
	flag.StringVar(&f.State, "state", "", "save state to load after -in")
	flag.IntVar(&f.Scale, "scale", 2, "window scale")
	flag.StringVar(&f.Title, "title", "rsxplay", "window title")
	flag.BoolVar(&f.Trace, "trace", false, "log every method")
	flag.BoolVar(&f.Async, "async", false, "render on a separate goroutine")
	flag.IntVar(&f.Workers, "workers", 4, "texture transcoding workers")
	flag.StringVar(&f.Captures, "captures", "captures", "directory listed by the open menu")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Steps, "steps", 0, "max commands in headless mode, 0 for no limit")
	flag.IntVar(&f.Frames, "frames", 0, "fail unless the stream flips at least this many times")
	flag.StringVar(&f.PNGOut, "outpng", "", "write the last uploaded texture to PNG at path")
	flag.IntVar(&f.PNGScale, "pngscale", 1, "integer upscale for -outpng")
	flag.StringVar(&f.Expect, "expect", "", "assert CRC32 (hex) of the last uploaded texture")
	flag.Parse()
	return f
}

func runHeadless(m *emu.Machine, rec *backend.Recorder, f CLIFlags) error {
	start := time.Now()
	err := m.RunUntilIdle()
	m.Close()
	dur := time.Since(start)
	if err != nil {
		return err
	}

	s := m.Stats()
	log.Printf("headless: commands=%d writes=%d draws=%d uploads=%d placeholders=%d flips=%d elapsed=%s",
		s.Decoder.Methods, s.Method.Writes, s.Draws, s.Uploads, s.Placeholders, s.Flips, dur.Truncate(time.Microsecond))
	if int(s.Flips) < f.Frames {
		return fmt.Errorf("stream flipped %d times, want at least %d", s.Flips, f.Frames)
	}

	last := rec.LastUpload()
	if last == nil {
		if f.Expect != "" || f.PNGOut != "" {
			return fmt.Errorf("no texture was uploaded")
		}
		return nil
	}
	crc := crc32.ChecksumIEEE(last.Data)
	log.Printf("last texture: %s %dx%d levels=%d tex_crc32=%08x",
		upload.FormatName(last.Key.Format), last.Key.Width, last.Key.Height, last.Key.Levels, crc)

	if f.PNGOut != "" {
		if err := saveTexturePNG(last, f.PNGScale, f.PNGOut); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", f.PNGOut)
	}

	if f.Expect != "" {
		// allow with/without 0x, upper/lowercase
		want := strings.TrimPrefix(strings.ToLower(f.Expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveTexturePNG(u *backend.TextureUpload, scale int, path string) error {
	src, err := u.Result.DecodeRGBA(0)
	if err != nil {
		return err
	}
	var img image.Image = src
	if scale > 1 {
		b := src.Bounds()
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
		img = dst
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func compile(in, out string) error {
	c, err := script.BuildFile(in)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, c.Encode(), 0644); err != nil {
		return err
	}
	log.Printf("wrote %s: %s", out, c)
	return nil
}

func main() {
	f := parseFlags()

	level := slog.LevelWarn
	if f.Trace {
		level = slog.LevelDebug
	}
	diag.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if f.Compile != "" {
		if f.Input == "" || !strings.EqualFold(filepath.Ext(f.Input), ".lua") {
			log.Fatal("-compile needs a Lua script as -in")
		}
		if err := compile(f.Input, f.Compile); err != nil {
			log.Fatalf("compile: %v", err)
		}
		return
	}

	emuCfg := emu.Config{
		Trace:  f.Trace,
		Async:  f.Async,
		Upload: upload.Options{Workers: f.Workers},
	}

	if f.Headless {
		if f.Input == "" {
			log.Fatal("-in is required in headless mode")
		}
		emuCfg.StepLimit = f.Steps
		rec := &backend.Recorder{}
		m := emu.New(emuCfg, rec)
		if err := m.LoadFile(f.Input); err != nil {
			log.Fatalf("load %s: %v", f.Input, err)
		}
		if f.State != "" {
			if err := m.LoadStateFromFile(f.State); err != nil {
				log.Fatalf("load state: %v", err)
			}
		}
		if err := runHeadless(m, rec, f); err != nil {
			log.Fatal(err)
		}
		return
	}

	app := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale, CapturesDir: f.Captures, Overlay: true})
	m := emu.New(emuCfg, app.Renderer())
	defer m.Close()
	app.Attach(m)
	if f.Input != "" {
		// prefer absolute path for save-state placement consistency
		path := f.Input
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if err := app.Load(path); err != nil {
			log.Fatalf("load %s: %v", f.Input, err)
		}
	}
	if f.State != "" {
		if err := m.LoadStateFromFile(f.State); err != nil {
			log.Fatalf("load state: %v", err)
		}
	}
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/capture"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/disasm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/fifo"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/script"
)

// clipWriter cuts lines to the terminal width. Tabs count as eight columns.
type clipWriter struct {
	w     io.Writer
	width int
	line  []byte
}

func (c *clipWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			c.line = append(c.line, p...)
			break
		}
		c.line = append(c.line, p[:i]...)
		if err := c.flush(); err != nil {
			return 0, err
		}
		p = p[i+1:]
	}
	return n, nil
}

func (c *clipWriter) flush() error {
	s := strings.ReplaceAll(string(c.line), "\t", "        ")
	if c.width > 1 && len(s) > c.width {
		s = s[:c.width-1] + ">"
	}
	c.line = c.line[:0]
	_, err := io.WriteString(c.w, s+"\n")
	return err
}

func load(path string) (*capture.Capture, error) {
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		return script.BuildFile(path)
	}
	return capture.LoadFile(path)
}

func main() {
	in := flag.String("in", "", "capture (.rsxc) or Lua script (.lua)")
	limit := flag.Int("limit", 100_000, "max commands to list, 0 for no limit")
	header := flag.Bool("header", false, "print the capture header and memory map first")
	width := flag.Int("width", 0, "clip lines to this many columns; 0 uses the terminal width")
	flag.Parse()

	if *in == "" {
		log.Fatal("-in is required")
	}
	c, err := load(*in)
	if err != nil {
		log.Fatalf("load %s: %v", *in, err)
	}

	bus := memory.New()
	ctrl := fifo.NewControl()
	if err := c.Apply(bus, ctrl); err != nil {
		log.Fatalf("apply: %v", err)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	var w io.Writer = out
	cols := *width
	if cols == 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			cols = tw
		}
	}
	if cols > 0 {
		w = &clipWriter{w: out, width: cols}
	}

	if *header {
		fmt.Fprintln(w, c)
		for _, m := range c.IOMaps {
			fmt.Fprintf(w, "io %#08x -> ea %#08x (%#x bytes)\n", m.IO, m.EA, m.Size)
		}
		for _, b := range c.Blocks {
			fmt.Fprintf(w, "block ea %#08x (%#x bytes)\n", b.EA, len(b.Data))
		}
		fmt.Fprintln(w)
	}

	if err := disasm.Stream(w, bus, ctrl.Get(), ctrl.Put(), *limit); err != nil {
		out.Flush()
		log.Fatalf("stream: %v", err)
	}
}

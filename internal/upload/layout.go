package upload

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrUnsupported = errors.New("upload: unsupported texture")
	ErrShortSource = errors.New("upload: guest data shorter than texture")
)

// UnsupportedFormatError reports a format or shape the pipeline cannot
// convert. Callers substitute Placeholder.
type UnsupportedFormatError struct {
	Format uint8
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("upload: unsupported texture format %#02x: %s", e.Format, e.Reason)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupported }

// Hardware limits on texture extents.
const (
	MaxSize  = 4096
	MaxDepth = 512
)

// Params describes one texture to transcode.
type Params struct {
	Format  uint8 // format byte, LN/UN flags included
	Width   int
	Height  int
	Depth   int // 3D slices, 1 otherwise
	Layers  int // 6 for cubemaps, 1 otherwise
	Levels  int // already clamped to the mip chain
	Pitch   int // guest row pitch for linear textures, 0 for tight
	Swizzle bool
}

// Options are the alignment constraints of the destination.
type Options struct {
	RowAlign   int // destination row pitch, e.g. 256
	LevelAlign int // destination subresource offset, e.g. 512
	LayerAlign int // guest stride between layers, e.g. 128
	Workers    int
}

// Defaults fills zero fields.
func (o *Options) Defaults() {
	if o.RowAlign == 0 {
		o.RowAlign = 256
	}
	if o.LevelAlign == 0 {
		o.LevelAlign = 512
	}
	if o.LayerAlign == 0 {
		o.LayerAlign = 128
	}
	if o.Workers == 0 {
		o.Workers = 1
	}
}

// Level is one subresource: a mip level of one layer.
type Level struct {
	Layer    int
	Level    int
	Width    int
	Height   int
	Depth    int
	RowPitch int // destination bytes per row of blocks
	Rows     int // rows of blocks per slice
	Offset   int // destination offset, a multiple of LevelAlign
	Size     int

	SrcOffset int
	SrcPitch  int
	SrcSize   int
}

// Layout is the full subresource table of a texture.
type Layout struct {
	Params  Params
	Format  FormatInfo
	Levels  []Level
	Size    int // destination bytes
	SrcSize int // guest bytes read
}

func align(v, a int) int {
	if a <= 1 {
		return v
	}
	return (v + a - 1) / a * a
}

func ceilDiv(v, d int) int { return (v + d - 1) / d }

func log2Ceil(v int) int {
	if v <= 1 {
		return 0
	}
	return bits.Len(uint(v - 1))
}

// MaxLevels is the length of a full mip chain for a w x h image.
func MaxLevels(w, h int) int {
	m := w
	if h > m {
		m = h
	}
	if m < 1 {
		return 1
	}
	return bits.Len(uint(m))
}

// Compute builds the subresource table. Layers repeat the whole chain;
// the guest start of every layer after the first is realigned to
// LayerAlign.
func Compute(p Params, o Options) (*Layout, error) {
	o.Defaults()
	f, ok := Lookup(p.Format)
	if !ok {
		return nil, &UnsupportedFormatError{Format: p.Format, Reason: "unknown format"}
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, &UnsupportedFormatError{Format: p.Format, Reason: fmt.Sprintf("size %dx%d", p.Width, p.Height)}
	}
	if p.Width > MaxSize || p.Height > MaxSize {
		return nil, &UnsupportedFormatError{Format: p.Format, Reason: fmt.Sprintf("size %dx%d exceeds %d", p.Width, p.Height, MaxSize)}
	}
	if p.Depth > MaxDepth {
		return nil, &UnsupportedFormatError{Format: p.Format, Reason: fmt.Sprintf("depth %d exceeds %d", p.Depth, MaxDepth)}
	}
	if p.Depth < 1 {
		p.Depth = 1
	}
	if p.Layers < 1 {
		p.Layers = 1
	}
	if p.Layers > 1 && p.Depth > 1 {
		return nil, &UnsupportedFormatError{Format: p.Format, Reason: "layered 3D texture"}
	}
	if p.Levels < 1 {
		p.Levels = 1
	}
	if m := MaxLevels(p.Width, p.Height); p.Levels > m {
		p.Levels = m
	}
	if f.Compressed() {
		p.Swizzle = false
	}

	l := &Layout{Params: p, Format: f}
	dst, src := 0, 0
	for layer := 0; layer < p.Layers; layer++ {
		if layer > 0 {
			src = align(src, o.LayerAlign)
		}
		for lv := 0; lv < p.Levels; lv++ {
			w, h, d := max(1, p.Width>>lv), max(1, p.Height>>lv), max(1, p.Depth>>lv)
			bw, bh := ceilDiv(w, f.BlockW), ceilDiv(h, f.BlockH)

			rowPitch := bw * f.DstBytes
			if !f.Compressed() {
				rowPitch = align(rowPitch, o.RowAlign)
			}
			sub := Level{
				Layer: layer, Level: lv,
				Width: w, Height: h, Depth: d,
				RowPitch: rowPitch,
				Rows:     bh,
				Offset:   align(dst, o.LevelAlign),
				Size:     rowPitch * bh * d,
			}

			switch {
			case p.Swizzle:
				// Morton order covers the power-of-two rounded extent.
				pw, ph, pd := 1<<log2Ceil(w), 1<<log2Ceil(h), 1<<log2Ceil(d)
				sub.SrcPitch = pw * f.SrcBytes
				sub.SrcSize = pw * ph * pd * f.SrcBytes
			case p.Pitch > 0:
				sub.SrcPitch = p.Pitch
				sub.SrcSize = p.Pitch * bh * d
			default:
				sub.SrcPitch = bw * f.SrcBytes
				sub.SrcSize = sub.SrcPitch * bh * d
			}
			sub.SrcOffset = src
			src += sub.SrcSize
			dst = sub.Offset + sub.Size
			l.Levels = append(l.Levels, sub)
		}
	}
	l.Size = dst
	l.SrcSize = src
	return l, nil
}

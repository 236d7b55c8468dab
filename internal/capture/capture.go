// Package capture reads and writes command buffer captures: a memory image
// of the guest's IO-mapped buffers plus the control block cursors, enough
// to replay a stream without the guest.
package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"slices"
	"strings"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/fifo"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
)

const (
	Magic      = "RSXC"
	Version    = 1
	HeaderSize = 0x40

	titleOffset = 0x24
	titleLen    = HeaderSize - titleOffset

	ioMapSize   = 12
	blockHeader = 8
)

var ErrFormat = errors.New("capture: bad format")

// FormatError locates a decoding problem.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("capture: offset %#x: %s", e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// Header is the fixed prefix of a capture. All fields are big-endian.
type Header struct {
	Version   uint16 // 0x04
	Flags     uint16 // 0x06
	Get       uint32 // 0x08, IO offset
	Put       uint32 // 0x0C
	Ref       uint32 // 0x10
	LabelBase uint32 // 0x14, 0 for the default
	IOMaps    uint32 // 0x18
	Blocks    uint32 // 0x1C
	Checksum  uint32 // 0x20, CRC-32 of everything after the header
	Title     string // 0x24-0x3F (NUL padded ASCII)
}

// IOMap maps Size bytes of IO space at IO onto EA.
type IOMap struct {
	IO, EA, Size uint32
}

// Block is a run of guest memory.
type Block struct {
	EA   uint32
	Data []byte
}

type Capture struct {
	Header Header
	IOMaps []IOMap
	Blocks []Block
}

func ParseHeader(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, &FormatError{0, "file too small to contain header"}
	}
	if string(b[:4]) != Magic {
		return nil, &FormatError{0, fmt.Sprintf("magic %q", b[:4])}
	}
	h := &Header{
		Version:   binary.BigEndian.Uint16(b[0x04:]),
		Flags:     binary.BigEndian.Uint16(b[0x06:]),
		Get:       binary.BigEndian.Uint32(b[0x08:]),
		Put:       binary.BigEndian.Uint32(b[0x0C:]),
		Ref:       binary.BigEndian.Uint32(b[0x10:]),
		LabelBase: binary.BigEndian.Uint32(b[0x14:]),
		IOMaps:    binary.BigEndian.Uint32(b[0x18:]),
		Blocks:    binary.BigEndian.Uint32(b[0x1C:]),
		Checksum:  binary.BigEndian.Uint32(b[0x20:]),
		Title:     strings.TrimRight(string(b[titleOffset:HeaderSize]), "\x00"),
	}
	if h.Version != Version {
		return nil, &FormatError{0x04, fmt.Sprintf("unsupported version %d", h.Version)}
	}
	return h, nil
}

// ChecksumOK reports whether the body matches the header checksum.
func ChecksumOK(b []byte) bool {
	if len(b) < HeaderSize {
		return false
	}
	return crc32.ChecksumIEEE(b[HeaderSize:]) == binary.BigEndian.Uint32(b[0x20:])
}

func Load(b []byte) (*Capture, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	if !ChecksumOK(b) {
		return nil, &FormatError{0x20, "checksum mismatch"}
	}
	c := &Capture{Header: *h}
	off := HeaderSize
	if uint64(h.IOMaps)*ioMapSize > uint64(len(b)-off) {
		return nil, &FormatError{off, fmt.Sprintf("%d io maps overrun the file", h.IOMaps)}
	}
	for i := uint32(0); i < h.IOMaps; i++ {
		c.IOMaps = append(c.IOMaps, IOMap{
			IO:   binary.BigEndian.Uint32(b[off:]),
			EA:   binary.BigEndian.Uint32(b[off+4:]),
			Size: binary.BigEndian.Uint32(b[off+8:]),
		})
		off += ioMapSize
	}
	for i := uint32(0); i < h.Blocks; i++ {
		if len(b)-off < blockHeader {
			return nil, &FormatError{off, fmt.Sprintf("block %d header truncated", i)}
		}
		ea := binary.BigEndian.Uint32(b[off:])
		n := int(binary.BigEndian.Uint32(b[off+4:]))
		off += blockHeader
		if n < 0 || n > len(b)-off {
			return nil, &FormatError{off, fmt.Sprintf("block %d length %d overruns the file", i, n)}
		}
		c.Blocks = append(c.Blocks, Block{EA: ea, Data: slices.Clone(b[off : off+n])})
		off += (n + 3) &^ 3
	}
	return c, nil
}

func LoadFile(path string) (*Capture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

// Encode serializes the capture, filling the counts and checksum.
func (c *Capture) Encode() []byte {
	var body bytes.Buffer
	for _, m := range c.IOMaps {
		body.Write(binary.BigEndian.AppendUint32(nil, m.IO))
		body.Write(binary.BigEndian.AppendUint32(nil, m.EA))
		body.Write(binary.BigEndian.AppendUint32(nil, m.Size))
	}
	for _, blk := range c.Blocks {
		body.Write(binary.BigEndian.AppendUint32(nil, blk.EA))
		body.Write(binary.BigEndian.AppendUint32(nil, uint32(len(blk.Data))))
		body.Write(blk.Data)
		if pad := (4 - len(blk.Data)%4) % 4; pad > 0 {
			body.Write(make([]byte, pad))
		}
	}

	h := c.Header
	h.Version = Version
	h.IOMaps = uint32(len(c.IOMaps))
	h.Blocks = uint32(len(c.Blocks))
	h.Checksum = crc32.ChecksumIEEE(body.Bytes())
	c.Header = h

	out := make([]byte, HeaderSize, HeaderSize+body.Len())
	copy(out, Magic)
	binary.BigEndian.PutUint16(out[0x04:], h.Version)
	binary.BigEndian.PutUint16(out[0x06:], h.Flags)
	binary.BigEndian.PutUint32(out[0x08:], h.Get)
	binary.BigEndian.PutUint32(out[0x0C:], h.Put)
	binary.BigEndian.PutUint32(out[0x10:], h.Ref)
	binary.BigEndian.PutUint32(out[0x14:], h.LabelBase)
	binary.BigEndian.PutUint32(out[0x18:], h.IOMaps)
	binary.BigEndian.PutUint32(out[0x1C:], h.Blocks)
	binary.BigEndian.PutUint32(out[0x20:], h.Checksum)
	title := h.Title
	if len(title) > titleLen {
		title = title[:titleLen]
	}
	copy(out[titleOffset:], title)
	return append(out, body.Bytes()...)
}

// Apply loads the capture into guest memory and sets the control block.
// Put is written last so a running puller sees a complete image.
func (c *Capture) Apply(bus *memory.Bus, ctrl *fifo.Control) error {
	for _, m := range c.IOMaps {
		if !bus.MapIO(m.IO, m.EA, m.Size) {
			return fmt.Errorf("capture: cannot map io %#x -> %#x (%#x bytes)", m.IO, m.EA, m.Size)
		}
	}
	for _, blk := range c.Blocks {
		bus.Load(blk.EA, blk.Data)
	}
	ctrl.SetGet(c.Header.Get)
	ctrl.SetRef(c.Header.Ref)
	ctrl.SetPut(c.Header.Put)
	return nil
}

// FromBus captures the current memory image. All-zero pages outside the IO
// mapped ranges are skipped and neighbouring pages are merged into one
// block.
func FromBus(bus *memory.Bus, ctrl *fifo.Control, title string) *Capture {
	c := &Capture{Header: Header{
		Version: Version,
		Get:     ctrl.Get(),
		Put:     ctrl.Put(),
		Ref:     ctrl.Ref(),
		Title:   title,
	}}
	for _, m := range bus.IOMappings() {
		if n := len(c.IOMaps); n > 0 {
			last := &c.IOMaps[n-1]
			if last.IO+last.Size == m.IO && last.EA+last.Size == m.EA {
				last.Size += memory.IOPage
				continue
			}
		}
		c.IOMaps = append(c.IOMaps, IOMap{IO: m.IO, EA: m.EA, Size: memory.IOPage})
	}
	pages := bus.Pages()
	slices.Sort(pages)
	zero := make([]byte, memory.PageSize)
	for _, p := range pages {
		data, _ := bus.Read(p, memory.PageSize)
		if bytes.Equal(data, zero) && !c.mapped(p) {
			continue
		}
		if n := len(c.Blocks); n > 0 {
			last := &c.Blocks[n-1]
			if last.EA+uint32(len(last.Data)) == p {
				last.Data = append(last.Data, data...)
				continue
			}
		}
		c.Blocks = append(c.Blocks, Block{EA: p, Data: data})
	}
	return c
}

func (c *Capture) mapped(ea uint32) bool {
	for _, m := range c.IOMaps {
		if ea >= m.EA && uint64(ea) < uint64(m.EA)+uint64(m.Size) {
			return true
		}
	}
	return false
}

func (c *Capture) String() string {
	return fmt.Sprintf("%q get=%#x put=%#x io-maps=%d blocks=%d", c.Header.Title, c.Header.Get, c.Header.Put, len(c.IOMaps), len(c.Blocks))
}

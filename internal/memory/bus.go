// Package memory models the guest address space seen by the GPU: local
// memory, main memory and the IO offset table that maps command buffer
// offsets to effective addresses.
package memory

import (
	"encoding/binary"
	"sync"
)

const (
	PageSize  = 0x10000 // allocation granularity
	IOPage    = 0x100000
	ioEntries = 0x1000 // 4 GiB of IO offsets in 1 MiB pages

	LocalBase = 0xC0000000 // effective address of GPU local memory
	LocalSize = 256 << 20
)

// Reader is the guest memory collaborator used by the decoder and the
// texture pipeline. ok is false when any byte of the range is unmapped.
type Reader interface {
	Read(addr uint32, n int) ([]byte, bool)
}

// Resolver maps an IO offset to an effective address.
type Resolver interface {
	Resolve(io uint32) (uint32, bool)
}

// Writer stores bytes at an effective address.
type Writer interface {
	Write(addr uint32, p []byte) bool
}

// Bus is a sparse big-endian address space with an IO map. Pages exist only
// once allocated.
type Bus struct {
	mu    sync.RWMutex
	pages map[uint32][]byte
	io    [ioEntries]uint32 // ea page + 1, 0 when unmapped
}

func New() *Bus {
	return &Bus{pages: make(map[uint32][]byte)}
}

// Alloc backs [addr, addr+size) with zeroed pages.
func (b *Bus) Alloc(addr, size uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if size == 0 {
		return
	}
	end := uint64(addr) + uint64(size)
	for p := uint64(addr) &^ (PageSize - 1); p < end; p += PageSize {
		if _, ok := b.pages[uint32(p)]; !ok {
			b.pages[uint32(p)] = make([]byte, PageSize)
		}
	}
}

// Free drops the pages fully contained in [addr, addr+size).
func (b *Bus) Free(addr, size uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	end := uint64(addr) + uint64(size)
	for p := (uint64(addr) + PageSize - 1) &^ (PageSize - 1); p+PageSize <= end; p += PageSize {
		delete(b.pages, uint32(p))
	}
}

// MapIO maps size bytes of IO offsets at io to effective address ea. Both
// must be 1 MiB aligned.
func (b *Bus) MapIO(io, ea, size uint32) bool {
	if io%IOPage != 0 || ea%IOPage != 0 {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for off := uint64(0); off < uint64(size); off += IOPage {
		idx := (uint64(io) + off) / IOPage
		if idx >= ioEntries {
			return false
		}
		b.io[idx] = uint32((uint64(ea)+off)/IOPage) + 1
	}
	return true
}

func (b *Bus) UnmapIO(io, size uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for off := uint64(0); off < uint64(size); off += IOPage {
		if idx := (uint64(io) + off) / IOPage; idx < ioEntries {
			b.io[idx] = 0
		}
	}
}

// IOMapping is one entry of the IO table.
type IOMapping struct {
	IO, EA uint32
}

// IOMappings lists the mapped 1 MiB IO pages.
func (b *Bus) IOMappings() []IOMapping {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []IOMapping
	for i, e := range b.io {
		if e != 0 {
			out = append(out, IOMapping{IO: uint32(i) * IOPage, EA: (e - 1) * IOPage})
		}
	}
	return out
}

func (b *Bus) Resolve(io uint32) (uint32, bool) {
	b.mu.RLock()
	e := b.io[io/IOPage]
	b.mu.RUnlock()
	if e == 0 {
		return 0, false
	}
	return (e-1)*IOPage | io%IOPage, true
}

// Read copies n bytes starting at addr.
func (b *Bus) Read(addr uint32, n int) ([]byte, bool) {
	out := make([]byte, n)
	if !b.ReadInto(addr, out) {
		return nil, false
	}
	return out, true
}

// ReadInto fills p from addr without allocating.
func (b *Bus) ReadInto(addr uint32, p []byte) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for done := 0; done < len(p); {
		a := uint64(addr) + uint64(done)
		if a > 0xffffffff {
			return false
		}
		page, ok := b.pages[uint32(a)&^(PageSize-1)]
		if !ok {
			return false
		}
		done += copy(p[done:], page[uint32(a)&(PageSize-1):])
	}
	return true
}

func (b *Bus) Write(addr uint32, p []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	// Check the whole range first so a failed write leaves memory untouched.
	for a := uint64(addr) &^ (PageSize - 1); a < uint64(addr)+uint64(len(p)); a += PageSize {
		if _, ok := b.pages[uint32(a)]; !ok || a > 0xffffffff {
			return false
		}
	}
	for done := 0; done < len(p); {
		a := addr + uint32(done)
		page := b.pages[a&^(PageSize-1)]
		done += copy(page[a&(PageSize-1):], p[done:])
	}
	return true
}

func (b *Bus) Read32(addr uint32) (uint32, bool) {
	var w [4]byte
	if !b.ReadInto(addr, w[:]) {
		return 0, false
	}
	return binary.BigEndian.Uint32(w[:]), true
}

func (b *Bus) Write32(addr, v uint32) bool {
	var w [4]byte
	binary.BigEndian.PutUint32(w[:], v)
	return b.Write(addr, w[:])
}

// ReadIO32 reads a word through the IO map.
func (b *Bus) ReadIO32(io uint32) (uint32, bool) {
	ea, ok := b.Resolve(io)
	if !ok {
		return 0, false
	}
	return b.Read32(ea)
}

// Load allocates and fills memory at addr.
func (b *Bus) Load(addr uint32, p []byte) {
	b.Alloc(addr, uint32(len(p)))
	b.Write(addr, p)
}

// Pages returns the allocated page addresses.
func (b *Bus) Pages() []uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]uint32, 0, len(b.pages))
	for a := range b.pages {
		out = append(out, a)
	}
	return out
}

// LocalAddress converts a local memory offset into an effective address.
func LocalAddress(offset uint32) uint32 { return LocalBase + offset }

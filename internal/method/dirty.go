// Package method maps register writes to their effects: storing state,
// tracking what changed since the last draw, and raising draws, clears,
// flips and memory transfers.
package method

import "strings"

// Dirty is a set of pipeline state categories invalidated by writes.
type Dirty uint32

const (
	DirtySurface Dirty = 1 << iota
	DirtyBlend
	DirtyDepthStencil
	DirtyAlphaTest
	DirtyRaster
	DirtyViewport
	DirtyFog
	DirtyVertexArrays
	DirtyShader
	DirtyTransformProgram
	DirtyTransformConstants
	DirtyFragmentTexture
	DirtyVertexTexture
)

var dirtyNames = [...]string{
	"surface", "blend", "depth-stencil", "alpha-test", "raster", "viewport",
	"fog", "vertex-arrays", "shader", "transform-program", "transform-constants",
	"fragment-texture", "vertex-texture",
}

func (d Dirty) String() string {
	if d == 0 {
		return "none"
	}
	var parts []string
	for i, n := range dirtyNames {
		if d&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "|")
}

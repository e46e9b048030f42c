package i915

import "fmt"

// Modifier is an opaque 64-bit layout tag understood across the driver
// ecosystem. It is what gets negotiated between independent allocators and
// consumers to agree on a physical layout.
type Modifier uint64

const (
	// ModifierLinear is plain row-major memory with no swizzling.
	ModifierLinear Modifier = 0

	modifierIntelVendor Modifier = 0x01 << 56

	ModifierXTiled Modifier = modifierIntelVendor | 1
	ModifierYTiled Modifier = modifierIntelVendor | 2
	// ModifierYTiledCCS is a Y-tiled main surface paired with a color control
	// surface that records per-tile compression state.
	ModifierYTiledCCS Modifier = modifierIntelVendor | 4
)

func (m Modifier) String() string {
	switch m {
	case ModifierLinear:
		return "Linear"
	case ModifierXTiled:
		return "XTiled"
	case ModifierYTiled:
		return "YTiled"
	case ModifierYTiledCCS:
		return "YTiledCCS"
	}
	return fmt.Sprintf("Modifier(0x%016x)", uint64(m))
}

// TilingMode is the two-dimensional swizzling scheme a surface uses.
// TilingNone means row-major linear memory.
type TilingMode uint32

const (
	TilingNone TilingMode = iota
	TilingX
	TilingY
)

func (t TilingMode) String() string {
	switch t {
	case TilingNone:
		return "None"
	case TilingX:
		return "X"
	case TilingY:
		return "Y"
	}
	return fmt.Sprintf("TilingMode(%d)", uint32(t))
}

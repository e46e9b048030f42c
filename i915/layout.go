package i915

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/FydeOS-ArcHero/external-minigbm/memutils"
)

const (
	// Y tiles are 128 bytes wide and 32 rows tall, 4096 bytes each.
	yTileWidth  = 128
	yTileHeight = 32
	yTileSize   = 4096

	// One control-surface tile covers a 32x16 block of main-surface tiles.
	ccsWidthRatio  = 32
	ccsHeightRatio = 16

	// lcuHeight is the largest-coded-unit granularity some chroma planes must
	// be padded to when a buffer may back video.
	lcuHeight = 64

	cachelineSize = 64
)

// Plane is the physical layout of one plane of a buffer.
type Plane struct {
	// Stride is the aligned bytes per row.
	Stride int
	// Height is the aligned row count.
	Height int
	// Offset is the plane's byte offset from the start of the buffer object.
	Offset int
	// Size is the plane's byte size.
	Size int
}

// BufferLayout is the fully resolved physical layout of a buffer request. It
// is created fresh per request and never mutated afterwards.
type BufferLayout struct {
	Format Format
	Width  int
	Height int

	Modifier Modifier
	Tiling   TilingMode

	// Planes holds per-plane layout. Compressed layouts always have exactly
	// two planes: the main surface followed by the control surface.
	Planes []Plane
	// TotalSize is the page-aligned size of the backing object.
	TotalSize int
}

// Validate checks the layout's structural invariants.
func (l *BufferLayout) Validate() error {
	if len(l.Planes) == 0 {
		return errors.New("layout has no planes")
	}

	planeSum := 0
	for i, plane := range l.Planes {
		if plane.Offset != planeSum {
			return errors.Errorf("plane %d starts at offset %d, expected %d", i, plane.Offset, planeSum)
		}
		if plane.Size <= 0 {
			return errors.Errorf("plane %d has non-positive size %d", i, plane.Size)
		}
		planeSum += plane.Size
	}

	if l.TotalSize < planeSum {
		return errors.Errorf("total size %d is smaller than the plane sum %d", l.TotalSize, planeSum)
	}
	return nil
}

func (l *BufferLayout) printParameters(json *jwriter.ObjectState) {
	json.Name("Format").String(l.Format.String())
	json.Name("Width").Int(l.Width)
	json.Name("Height").Int(l.Height)
	json.Name("Modifier").String(l.Modifier.String())
	json.Name("Tiling").String(l.Tiling.String())
	json.Name("TotalSize").Int(l.TotalSize)

	planes := json.Name("Planes").Array()
	for _, plane := range l.Planes {
		obj := planes.Object()
		obj.Name("Stride").Int(plane.Stride)
		obj.Name("Height").Int(plane.Height)
		obj.Name("Offset").Int(plane.Offset)
		obj.Name("Size").Int(plane.Size)
		obj.End()
	}
	planes.End()
}

// PrintJSON writes the layout into an in-progress JSON object.
func (l *BufferLayout) PrintJSON(json *jwriter.ObjectState) {
	l.printParameters(json)
}

// layoutRecipe selects which encoder fills in the planes once the format and
// modifier are known. Exactly one recipe applies per layout.
type layoutRecipe uint8

const (
	recipeGeneric layoutRecipe = iota
	recipeCompressed
	recipeAndroidPacked
)

func recipeFor(format Format, modifier Modifier) layoutRecipe {
	switch {
	case format == FormatYVU420Android:
		return recipeAndroidPacked
	case modifier == ModifierYTiledCCS:
		return recipeCompressed
	}
	return recipeGeneric
}

// alignDimensions applies the generation and tiling specific alignment rules
// to one plane's stride and height.
func alignDimensions(profile *DeviceProfile, tiling TilingMode, linearAlignment, stride, height int) (int, int, error) {
	var horizontalAlignment, verticalAlignment int

	switch tiling {
	case TilingX:
		horizontalAlignment = 512
		verticalAlignment = 8
	case TilingY:
		if profile.Gen == 3 {
			horizontalAlignment = 512
			verticalAlignment = 8
		} else {
			horizontalAlignment = 128
			verticalAlignment = 32
		}
	default:
		// Linear mode needs no hardware alignment, but the media stack
		// expects the stride on a cache line and the height padded to 4 rows.
		horizontalAlignment = linearAlignment
		verticalAlignment = 4
	}

	height = memutils.AlignUp(height, uint(verticalAlignment))
	if profile.Gen > 3 {
		stride = memutils.AlignUp(stride, uint(horizontalAlignment))
	} else {
		// The oldest tier snaps strides to the next power of two of the
		// alignment constant, not just a multiple of it.
		for stride > horizontalAlignment {
			horizontalAlignment <<= 1
		}
		stride = horizontalAlignment
	}

	// ADL-P tiled buffers require power-of-two strides.
	if profile.IsADLP && stride > 1 && tiling != TilingNone {
		stride = memutils.NextPow2(stride)
	}

	if profile.Gen <= 3 && stride > legacyMaxStride {
		return 0, 0, errors.Wrapf(ErrHardwareLimit,
			"stride %d exceeds the %d-byte row pitch limit", stride, legacyMaxStride)
	}

	return stride, height, nil
}

// needsLCUAlignment reports whether the plane's height must be padded to the
// largest coded unit, assuming the buffer may back video. Only the chroma
// plane of the biplanar 4:2:0 formats needs this, and only on the two
// generations whose LCU granularity requires it.
func needsLCUAlignment(format Format, plane int, profile *DeviceProfile) bool {
	switch format {
	case FormatNV12, FormatP010, FormatP016:
		return (profile.Gen == 11 || profile.Gen == 12) && plane == 1
	}
	return false
}

func (r *Resolver) fillGeneric(layout *BufferLayout) error {
	offset := 0

	for plane := 0; plane < NumPlanes(layout.Format); plane++ {
		stride := planeStride(layout.Format, layout.Width, plane)
		height := planeHeight(layout.Format, layout.Height, plane)

		stride, height, err := alignDimensions(r.profile, layout.Tiling, r.linearAlignment, stride, height)
		if err != nil {
			return err
		}

		if needsLCUAlignment(layout.Format, plane, r.profile) {
			height = memutils.AlignUp(height, lcuHeight)
		}

		layout.Planes = append(layout.Planes, Plane{
			Stride: stride,
			Height: height,
			Offset: offset,
			Size:   stride * height,
		})
		offset += stride * height
	}

	layout.TotalSize = memutils.AlignUp(offset, uint(r.pageSize))
	return nil
}

// fillCompressed encodes the compressed layout: a Y-tiled main surface on
// plane 0 and its color control surface on plane 1, regardless of the
// format's natural plane count.
func (r *Resolver) fillCompressed(layout *BufferLayout) {
	stride := planeStride(layout.Format, layout.Width, 0)
	widthInTiles := memutils.DivRoundUp(stride, yTileWidth)
	heightInTiles := memutils.DivRoundUp(layout.Height, yTileHeight)
	mainSize := widthInTiles * heightInTiles * yTileSize

	layout.Planes = append(layout.Planes, Plane{
		Stride: widthInTiles * yTileWidth,
		Height: heightInTiles * yTileHeight,
		Offset: 0,
		Size:   mainSize,
	})

	ccsWidthInTiles := memutils.DivRoundUp(widthInTiles, ccsWidthRatio)
	ccsHeightInTiles := memutils.DivRoundUp(heightInTiles, ccsHeightRatio)
	ccsSize := ccsWidthInTiles * ccsHeightInTiles * yTileSize

	// The main surface size is a whole number of 4096-byte tiles, so the
	// control surface lands on its required 4096-byte alignment.
	layout.Planes = append(layout.Planes, Plane{
		Stride: ccsWidthInTiles * yTileWidth,
		Height: ccsHeightInTiles * yTileHeight,
		Offset: mainSize,
		Size:   ccsSize,
	})

	layout.TotalSize = memutils.AlignUp(mainSize+ccsSize, uint(r.pageSize))
}

// fillAndroidPacked encodes Android's packed YV12 variant. It is only ever
// used as a linear texture; its contract fixes the luma stride to a 32-byte
// multiple, which also makes the chroma strides the required multiple of 16.
func (r *Resolver) fillAndroidPacked(layout *BufferLayout) {
	alignedWidth := memutils.AlignUp(layout.Width, 32)
	offset := 0

	for plane := 0; plane < NumPlanes(layout.Format); plane++ {
		stride := planeStride(layout.Format, alignedWidth, plane)
		height := planeHeight(layout.Format, layout.Height, plane)

		layout.Planes = append(layout.Planes, Plane{
			Stride: stride,
			Height: height,
			Offset: offset,
			Size:   stride * height,
		})
		offset += stride * height
	}

	layout.TotalSize = memutils.AlignUp(offset, uint(r.pageSize))
}

func (r *Resolver) computeLayout(format Format, width, height int, modifier Modifier) (*BufferLayout, error) {
	tiling, err := tilingFromModifier(modifier)
	if err != nil {
		return nil, err
	}

	layout := &BufferLayout{
		Format:   format,
		Width:    width,
		Height:   height,
		Modifier: modifier,
		Tiling:   tiling,
	}

	switch recipeFor(format, modifier) {
	case recipeAndroidPacked:
		r.fillAndroidPacked(layout)
	case recipeCompressed:
		r.fillCompressed(layout)
	default:
		if err := r.fillGeneric(layout); err != nil {
			return nil, err
		}
	}

	return layout, nil
}

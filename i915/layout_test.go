package i915

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FydeOS-ArcHero/external-minigbm/memutils"
)

func requireLayoutInvariants(t *testing.T, layout *BufferLayout) {
	t.Helper()
	require.NoError(t, layout.Validate())

	planeSum := 0
	for i, plane := range layout.Planes {
		require.Equal(t, planeSum, plane.Offset, "plane %d offset", i)
		planeSum += plane.Size
	}
	require.GreaterOrEqual(t, layout.TotalSize, planeSum)
	require.True(t, memutils.IsAligned(layout.TotalSize, uint(os.Getpagesize())),
		"total size %d is not page aligned", layout.TotalSize)
}

func TestCompressedNV12Decode(t *testing.T) {
	resolver := testResolver(t, 0x9A49, ResolverOptions{})

	layout, err := resolver.ResolveLayout(FormatNV12, 1920, 1080, UseHWVideoDecoder, nil)
	require.NoError(t, err)
	requireLayoutInvariants(t, layout)

	require.Equal(t, ModifierYTiledCCS, layout.Modifier)
	require.Equal(t, TilingY, layout.Tiling)
	require.Len(t, layout.Planes, 2)

	// 1920 bytes per row is 15 tiles across; 1080 rows is 34 tiles down.
	main := layout.Planes[0]
	require.Equal(t, 1920, main.Stride)
	require.Equal(t, 0, main.Offset)
	require.Equal(t, 15*34*4096, main.Size)

	// One control tile covers 32x16 main tiles.
	ccs := layout.Planes[1]
	require.Equal(t, main.Size, ccs.Offset)
	require.Equal(t, 1*3*4096, ccs.Size)
	require.Zero(t, ccs.Offset%4096)
	require.Zero(t, ccs.Size%4096)

	require.Equal(t, main.Size+ccs.Size, layout.TotalSize)
}

func TestCompressionDisabledNV12Decode(t *testing.T) {
	resolver := testResolver(t, 0x9A49, ResolverOptions{DisableCompression: true})

	layout, err := resolver.ResolveLayout(FormatNV12, 1920, 1080, UseHWVideoDecoder, nil)
	require.NoError(t, err)
	requireLayoutInvariants(t, layout)

	require.Equal(t, ModifierYTiled, layout.Modifier)
	require.Equal(t, TilingY, layout.Tiling)
	require.Len(t, layout.Planes, 2)

	// New-generation Y-tiled alignment: stride to 128 bytes, height to 32 rows.
	require.Equal(t, 1920, layout.Planes[0].Stride)
	require.Equal(t, 1088, layout.Planes[0].Height)

	// The chroma plane additionally pads to the largest coded unit on gen 12.
	require.Equal(t, 1920, layout.Planes[1].Stride)
	require.Equal(t, 576, layout.Planes[1].Height)
}

func TestLinearAlignment(t *testing.T) {
	resolver := testResolver(t, 0x9A49, ResolverOptions{})

	layout, err := resolver.ResolveLayout(FormatXRGB8888, 1000, 10,
		UseRendering|UseLinear, nil)
	require.NoError(t, err)
	requireLayoutInvariants(t, layout)

	require.Equal(t, TilingNone, layout.Tiling)
	require.Equal(t, memutils.AlignUp(4000, 64), layout.Planes[0].Stride)
	require.Equal(t, 12, layout.Planes[0].Height)
}

func TestCrossDeviceLinearAlignment(t *testing.T) {
	resolver := testResolver(t, 0x9A49, ResolverOptions{CrossDeviceLinearAlignment: true})

	layout, err := resolver.ResolveLayout(FormatXRGB8888, 1000, 10,
		UseRendering|UseLinear, nil)
	require.NoError(t, err)

	require.Equal(t, memutils.AlignUp(4000, 256), layout.Planes[0].Stride)
}

func TestLegacyPowerOfTwoStride(t *testing.T) {
	resolver := testResolver(t, 0x2582, ResolverOptions{})

	// Gen 3 snaps linear strides to a power of two, not a multiple of 64.
	layout, err := resolver.ResolveLayout(FormatR8, 100, 10, UseSWReadOften|UseLinear, nil)
	require.NoError(t, err)
	requireLayoutInvariants(t, layout)

	require.Equal(t, 128, layout.Planes[0].Stride)
	require.Equal(t, 12, layout.Planes[0].Height)
}

func TestLegacyRowPitchLimit(t *testing.T) {
	resolver := testResolver(t, 0x2582, ResolverOptions{})

	// 5000 pixels at 4 bytes per pixel snaps to 32768, past the 8192 limit.
	_, err := resolver.ResolveLayout(FormatXRGB8888, 5000, 10,
		UseRendering|UseLinear, nil)
	require.ErrorIs(t, err, ErrHardwareLimit)
}

func TestADLPPowerOfTwoTiledStride(t *testing.T) {
	resolver := testResolver(t, 0x46A0, ResolverOptions{})

	layout, err := resolver.ResolveLayout(FormatXRGB8888, 600, 100, 0,
		[]Modifier{ModifierXTiled})
	require.NoError(t, err)
	requireLayoutInvariants(t, layout)

	// 600*4 = 2400 aligns to 2560 for X tiling, then snaps to 4096.
	require.Equal(t, 4096, layout.Planes[0].Stride)

	// Linear strides are exempt from the quirk.
	layout, err = resolver.ResolveLayout(FormatXRGB8888, 600, 100, 0,
		[]Modifier{ModifierLinear})
	require.NoError(t, err)
	require.Equal(t, memutils.AlignUp(2400, 64), layout.Planes[0].Stride)
}

func TestLCUChromaPadding(t *testing.T) {
	resolver := testResolver(t, 0x4E71, ResolverOptions{})

	layout, err := resolver.ResolveLayout(FormatP010, 1920, 1080, 0,
		[]Modifier{ModifierYTiled})
	require.NoError(t, err)
	requireLayoutInvariants(t, layout)

	require.Len(t, layout.Planes, 2)
	require.Equal(t, 3840, layout.Planes[0].Stride)
	require.Equal(t, 1088, layout.Planes[0].Height)

	// 540 chroma rows align to 544 for Y tiling, then pad to the 64-row LCU.
	require.Equal(t, 576, layout.Planes[1].Height)
	require.Zero(t, layout.Planes[1].Height%64)
}

func TestNoLCUPaddingOnBaseline(t *testing.T) {
	resolver := testResolver(t, 0x1234, ResolverOptions{})

	layout, err := resolver.ResolveLayout(FormatP010, 1920, 1080, 0,
		[]Modifier{ModifierYTiled})
	require.NoError(t, err)

	require.Equal(t, 544, layout.Planes[1].Height)
}

func TestAndroidPackedYVU420(t *testing.T) {
	resolver := testResolver(t, 0x9A49, ResolverOptions{})

	layout, err := resolver.ResolveLayout(FormatYVU420Android, 97, 100,
		UseTexture|UseSWReadOften|UseLinear, nil)
	require.NoError(t, err)
	requireLayoutInvariants(t, layout)

	require.Equal(t, TilingNone, layout.Tiling)
	require.Len(t, layout.Planes, 3)

	// The luma stride is the width padded to 32 bytes; chroma is half that,
	// which satisfies the format's 16-byte chroma stride contract.
	require.Equal(t, 128, layout.Planes[0].Stride)
	require.Equal(t, 100, layout.Planes[0].Height)
	require.Equal(t, 64, layout.Planes[1].Stride)
	require.Equal(t, 50, layout.Planes[1].Height)
	require.Equal(t, 64, layout.Planes[2].Stride)
	require.Equal(t, 50, layout.Planes[2].Height)
}

func TestPlanarYVU420(t *testing.T) {
	resolver := testResolver(t, 0x9A49, ResolverOptions{})

	layout, err := resolver.ResolveLayout(FormatYVU420, 640, 480,
		UseTexture|UseSWReadOften|UseLinear, nil)
	require.NoError(t, err)
	requireLayoutInvariants(t, layout)

	require.Len(t, layout.Planes, 3)
	require.Equal(t, 640, layout.Planes[0].Stride)
	require.Equal(t, memutils.AlignUp(320, 64), layout.Planes[1].Stride)
}

func TestResolveLayoutIsIdempotent(t *testing.T) {
	resolver := testResolver(t, 0x9A49, ResolverOptions{})

	first, err := resolver.ResolveLayout(FormatNV12, 1920, 1080, UseHWVideoDecoder, nil)
	require.NoError(t, err)
	second, err := resolver.ResolveLayout(FormatNV12, 1920, 1080, UseHWVideoDecoder, nil)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestResolvedModifierRoundTrips(t *testing.T) {
	resolver := testResolver(t, 0x9A49, ResolverOptions{})

	requests := []struct {
		format Format
		use    UseFlags
	}{
		{FormatNV12, UseHWVideoDecoder},
		{FormatXRGB8888, UseRendering | UseScanout},
		{FormatXRGB8888, UseRendering | UseLinear},
		{FormatR8, UseCameraRead | UseLinear},
	}

	for _, req := range requests {
		viaMatrix, err := resolver.ResolveLayout(req.format, 1920, 1080, req.use, nil)
		require.NoError(t, err)

		// Feeding the resolved modifier back in as a caller preference must
		// reproduce the same layout; there is no hidden state.
		viaModifier, err := resolver.ResolveLayout(req.format, 1920, 1080, 0,
			[]Modifier{viaMatrix.Modifier})
		require.NoError(t, err)
		require.Equal(t, viaMatrix, viaModifier)
	}
}

func TestLinearRequiredAlwaysLinear(t *testing.T) {
	resolver := testResolver(t, 0x9A49, ResolverOptions{})

	formats := []Format{
		FormatXRGB8888, FormatARGB8888, FormatABGR16161616F,
		FormatNV12, FormatP010, FormatR8, FormatYVU420,
	}
	for _, format := range formats {
		layout, err := resolver.ResolveLayout(format, 1280, 720,
			UseSWWriteOften|UseLinear, nil)
		require.NoError(t, err, "format %s", format)
		require.Equal(t, TilingNone, layout.Tiling, "format %s", format)
	}
}

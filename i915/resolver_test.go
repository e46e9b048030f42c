package i915

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func testResolver(t *testing.T, deviceID uint16, options ResolverOptions) *Resolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout))
	return NewResolver(logger, NewDeviceProfile(deviceID, true), options)
}

var resolveModifierTestCases = map[string]struct {
	DeviceID  uint16
	Options   ResolverOptions
	Format    Format
	Width     int
	Use       UseFlags
	Modifiers []Modifier

	ExpectModifier Modifier
	ExpectErr      error
}{
	"TestDeviceOrderIsAuthoritative": {
		// The caller lists linear first, but the device prefers Y-tiled.
		DeviceID:       0x9A49,
		Format:         FormatXRGB8888,
		Width:          1024,
		Modifiers:      []Modifier{ModifierLinear, ModifierXTiled, ModifierYTiled},
		ExpectModifier: ModifierYTiled,
	},
	"TestNoIntersectionFails": {
		DeviceID:  0x9A49,
		Format:    FormatXRGB8888,
		Width:     1024,
		Modifiers: []Modifier{Modifier(0xdeadbeef)},
		ExpectErr: ErrUnsupportedRequest,
	},
	"TestUnconstrainedUsesMatrix": {
		DeviceID:       0x9A49,
		Format:         FormatNV12,
		Width:          1920,
		Use:            UseHWVideoDecoder,
		ExpectModifier: ModifierYTiledCCS,
	},
	"TestRenderScriptResolvesLinear": {
		DeviceID:       0x9A49,
		Format:         FormatXRGB8888,
		Width:          640,
		Use:            UseRenderScript | UseSWWriteOften,
		ExpectModifier: ModifierLinear,
	},
	"TestUnconstrainedUnknownUsageFails": {
		DeviceID:  0x9A49,
		Format:    FormatR8,
		Width:     1024,
		Use:       UseRendering,
		ExpectErr: ErrUnsupportedRequest,
	},
	"TestHugeSurfaceFallsBackToLinear": {
		// Below gen 11 a 5000-wide render target cannot stay compressed, and
		// with no caller list to fall back on the result is linear.
		DeviceID:       0x1234,
		Format:         FormatXRGB8888,
		Width:          5000,
		Use:            UseRendering,
		ExpectModifier: ModifierLinear,
	},
	"TestHugeSurfaceFallsBackToXTiled": {
		DeviceID:       0x1234,
		Format:         FormatXRGB8888,
		Width:          5000,
		Modifiers:      []Modifier{ModifierYTiledCCS, ModifierXTiled},
		ExpectModifier: ModifierXTiled,
	},
	"TestHugeSurfaceExemptsNV12": {
		// The video consumer requires tiled NV12 regardless of width.
		DeviceID:       0x1234,
		Format:         FormatNV12,
		Width:          5000,
		Use:            UseHWVideoDecoder,
		ExpectModifier: ModifierYTiledCCS,
	},
	"TestHugeSurfaceNotAppliedOnGen11": {
		DeviceID:       0x4E71,
		Format:         FormatXRGB8888,
		Width:          5000,
		Use:            UseRendering,
		ExpectModifier: ModifierYTiledCCS,
	},
	"TestCompressionDisabledKeepsCallerYTiled": {
		DeviceID:       0x9A49,
		Options:        ResolverOptions{DisableCompression: true},
		Format:         FormatXRGB8888,
		Width:          1024,
		Modifiers:      []Modifier{ModifierYTiledCCS, ModifierYTiled},
		ExpectModifier: ModifierYTiled,
	},
	"TestCompressionDisabledFallsBackToLinear": {
		DeviceID:       0x9A49,
		Options:        ResolverOptions{DisableCompression: true},
		Format:         FormatXRGB8888,
		Width:          1024,
		Modifiers:      []Modifier{ModifierYTiledCCS},
		ExpectModifier: ModifierLinear,
	},
}

func TestResolveModifier(t *testing.T) {
	for testName, testCase := range resolveModifierTestCases {
		testCase := testCase
		t.Run(testName, func(t *testing.T) {
			resolver := testResolver(t, testCase.DeviceID, testCase.Options)

			modifier, err := resolver.resolveModifier(
				testCase.Format, testCase.Width, testCase.Use, testCase.Modifiers)
			if testCase.ExpectErr != nil {
				require.ErrorIs(t, err, testCase.ExpectErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, testCase.ExpectModifier, modifier)
		})
	}
}

func TestTilingFromModifier(t *testing.T) {
	tiling, err := tilingFromModifier(ModifierLinear)
	require.NoError(t, err)
	require.Equal(t, TilingNone, tiling)

	tiling, err = tilingFromModifier(ModifierXTiled)
	require.NoError(t, err)
	require.Equal(t, TilingX, tiling)

	tiling, err = tilingFromModifier(ModifierYTiled)
	require.NoError(t, err)
	require.Equal(t, TilingY, tiling)

	tiling, err = tilingFromModifier(ModifierYTiledCCS)
	require.NoError(t, err)
	require.Equal(t, TilingY, tiling)

	_, err = tilingFromModifier(Modifier(0xbad))
	require.Error(t, err)
}

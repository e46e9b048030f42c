package i915

import "github.com/FydeOS-ArcHero/external-minigbm/i915/internal/utils"

// UseFlags is the 64-bit usage bitmask a caller attaches to an allocation
// request. The flags describe every way the buffer may be consumed, and the
// capability matrix only offers layouts whose usage set covers all of them.
type UseFlags uint64

var useFlagsMapping = utils.NewFlagStringMapping[UseFlags]()

func (f UseFlags) Register(str string) {
	useFlagsMapping.Register(f, str)
}
func (f UseFlags) String() string {
	return useFlagsMapping.FlagsToString(f)
}

const (
	// UseScanout marks buffers presented directly by the display engine.
	UseScanout UseFlags = 1 << iota
	// UseRendering marks render targets.
	UseRendering
	// UseTexture marks buffers sampled as textures.
	UseTexture
	// UseLinear requires a linear layout regardless of other usage.
	UseLinear
	UseSWReadOften
	UseSWReadRarely
	UseSWWriteOften
	UseSWWriteRarely
	UseCameraRead
	UseCameraWrite
	UseHWVideoDecoder
	UseHWVideoEncoder
	// UseRenderScript marks buffers consumed by the software compute
	// pipeline, which is sensitive to mapping latency.
	UseRenderScript
	// UseProtected requests hardware-protected content backing.
	UseProtected
)

const (
	// UseSWMask covers every software access pattern.
	UseSWMask = UseSWReadOften | UseSWReadRarely | UseSWWriteOften | UseSWWriteRarely
	// UseRenderMask is the usage a render-capable layout must serve.
	UseRenderMask = UseLinear | UseRendering | UseRenderScript | UseTexture | UseSWMask
	// UseTextureMask is the usage a texture-only layout must serve.
	UseTextureMask = UseLinear | UseRenderScript | UseTexture | UseSWMask

	// useLinearOnly are the bits that force a linear layout; tiled capability
	// entries are declared with these stripped.
	useLinearOnly = UseRenderScript | UseLinear | UseSWMask
)

func init() {
	UseScanout.Register("UseScanout")
	UseRendering.Register("UseRendering")
	UseTexture.Register("UseTexture")
	UseLinear.Register("UseLinear")
	UseSWReadOften.Register("UseSWReadOften")
	UseSWReadRarely.Register("UseSWReadRarely")
	UseSWWriteOften.Register("UseSWWriteOften")
	UseSWWriteRarely.Register("UseSWWriteRarely")
	UseCameraRead.Register("UseCameraRead")
	UseCameraWrite.Register("UseCameraWrite")
	UseHWVideoDecoder.Register("UseHWVideoDecoder")
	UseHWVideoEncoder.Register("UseHWVideoEncoder")
	UseRenderScript.Register("UseRenderScript")
	UseProtected.Register("UseProtected")
}

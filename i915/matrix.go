package i915

import (
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// layoutDescriptor is one concrete physical layout the hardware can produce:
// a tiling mode, the modifier advertised for it, and a priority used to rank
// candidates when several match a request.
type layoutDescriptor struct {
	tiling   TilingMode
	priority int
	modifier Modifier
}

// combination pairs a layout descriptor with the usage set it may serve.
type combination struct {
	descriptor layoutDescriptor
	use        UseFlags
}

// capabilityMatrix maps formats to the layouts offered for them. It is built
// once per device context by an ordered sequence of rules and is read-only
// afterwards, so concurrent lookups need no synchronization.
//
// The rule order matters: the permissive linear entries are declared first and
// tiled variants are layered on top with their usage restricted, so a request
// that satisfies no specialized entry always degrades to linear.
type capabilityMatrix struct {
	combos *swiss.Map[Format, []combination]
}

var scanoutRenderFormats = []Format{
	FormatABGR2101010, FormatABGR8888,
	FormatARGB2101010, FormatARGB8888,
	FormatRGB565, FormatXBGR2101010,
	FormatXBGR8888, FormatXRGB2101010,
	FormatXRGB8888,
}

var renderFormats = []Format{FormatABGR16161616F}

var textureOnlyFormats = []Format{
	FormatR8, FormatNV12, FormatP010,
	FormatYVU420, FormatYVU420Android,
}

func newCapabilityMatrix(profile *DeviceProfile, compression bool) *capabilityMatrix {
	m := &capabilityMatrix{combos: swiss.NewMap[Format, []combination](32)}

	scanoutAndRender := UseRenderMask | UseScanout
	render := UseRenderMask
	textureOnly := UseTextureMask

	// Hardware-protected buffers also need to be scanned out.
	var hwProtected UseFlags
	if profile.HasHWProtection {
		hwProtected = UseProtected | UseScanout
	}

	linear := layoutDescriptor{tiling: TilingNone, priority: 1, modifier: ModifierLinear}

	m.addAll(scanoutRenderFormats, linear, scanoutAndRender)
	m.addAll(renderFormats, linear, render)
	m.addAll(textureOnlyFormats, linear, textureOnly)

	m.modifyLinear()

	// NV12 serves camera, display, decoding and encoding; the camera ISP can
	// only produce NV12 output.
	m.modify(FormatNV12, ModifierLinear,
		UseCameraRead|UseCameraWrite|UseScanout|
			UseHWVideoDecoder|UseHWVideoEncoder|hwProtected)

	// Android CTS requires a software-usable BGR888.
	m.add(FormatBGR888, linear, UseSWMask)

	// R8 backs blob buffers: JPEG snapshots from the camera and the in/out
	// streams of the hardware codecs.
	m.modify(FormatR8, ModifierLinear,
		UseCameraRead|UseCameraWrite|UseHWVideoDecoder|UseHWVideoEncoder)

	renderNotLinear := render &^ useLinearOnly
	scanoutRenderNotLinear := renderNotLinear | UseScanout

	xTiled := layoutDescriptor{tiling: TilingX, priority: 2, modifier: ModifierXTiled}
	m.addAll(renderFormats, xTiled, renderNotLinear)
	m.addAll(scanoutRenderFormats, xTiled, scanoutRenderNotLinear)

	yTiled := layoutDescriptor{tiling: TilingY, priority: 3, modifier: ModifierYTiled}

	// Y-tiled NV12 and P010 for the media stack. Tiled scanout of P010 is only
	// offered from gen 11 onward.
	nv12Usage := UseTexture | UseHWVideoDecoder | UseScanout | hwProtected
	p010Usage := UseTexture | UseHWVideoDecoder | hwProtected
	if profile.Gen >= 11 {
		p010Usage |= UseScanout
	}
	m.add(FormatNV12, yTiled, nv12Usage)
	m.add(FormatP010, yTiled, p010Usage)

	m.addAll(renderFormats, yTiled, renderNotLinear)

	// Y-tiled scanout isn't available on old platforms, so the scanout formats
	// are offered without the scanout bit.
	m.addAll(scanoutRenderFormats, yTiled, renderNotLinear)

	// Compressed offers mirror the Y-tiled ones and disappear entirely when
	// compression is disabled for the context.
	if compression {
		ccs := layoutDescriptor{tiling: TilingY, priority: 4, modifier: ModifierYTiledCCS}
		m.add(FormatNV12, ccs, nv12Usage)
		m.add(FormatP010, ccs, p010Usage)
		m.addAll(renderFormats, ccs, renderNotLinear)
		m.addAll(scanoutRenderFormats, ccs, renderNotLinear)
	}

	return m
}

// add appends a new combination for the format.
func (m *capabilityMatrix) add(format Format, descriptor layoutDescriptor, use UseFlags) {
	combos, _ := m.combos.Get(format)
	m.combos.Put(format, append(combos, combination{descriptor: descriptor, use: use}))
}

func (m *capabilityMatrix) addAll(formats []Format, descriptor layoutDescriptor, use UseFlags) {
	for _, format := range formats {
		m.add(format, descriptor, use)
	}
}

// modify widens the usage of the format's existing entries for the given
// modifier, rather than adding a competing entry.
func (m *capabilityMatrix) modify(format Format, modifier Modifier, use UseFlags) {
	combos, ok := m.combos.Get(format)
	if !ok {
		return
	}
	for i := range combos {
		if combos[i].descriptor.modifier == modifier {
			combos[i].use |= use
		}
	}
}

// modifyLinear grants every linear entry the software-access and
// linear-required bits, so any format offered at all can be allocated for
// plain CPU use.
func (m *capabilityMatrix) modifyLinear() {
	m.combos.Iter(func(format Format, combos []combination) bool {
		for i := range combos {
			if combos[i].descriptor.modifier == ModifierLinear {
				combos[i].use |= UseSWMask | UseLinear
			}
		}
		return false
	})
}

// lookup returns the highest-priority combination whose usage set covers the
// request, or false if none does.
func (m *capabilityMatrix) lookup(format Format, use UseFlags) (combination, bool) {
	combos, ok := m.combos.Get(format)
	if !ok {
		return combination{}, false
	}

	var best combination
	found := false
	for _, c := range combos {
		if c.use&use != use {
			continue
		}
		if !found || c.descriptor.priority > best.descriptor.priority {
			best = c
			found = true
		}
	}
	return best, found
}

func (m *capabilityMatrix) printJSON(json *jwriter.ObjectState) {
	m.combos.Iter(func(format Format, combos []combination) bool {
		formatArray := json.Name(format.String()).Array()
		for _, c := range combos {
			obj := formatArray.Object()
			obj.Name("Modifier").String(c.descriptor.modifier.String())
			obj.Name("Tiling").String(c.descriptor.tiling.String())
			obj.Name("Priority").Int(c.descriptor.priority)
			obj.Name("Usage").String(c.use.String())
			obj.End()
		}
		formatArray.End()
		return false
	})
}

package i915

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slices"
)

const (
	// hugeWidthThreshold is the width above which older generations can only
	// scan out linear or X-tiled surfaces.
	hugeWidthThreshold = 4096
	// legacyMaxStride is the row-pitch ceiling on the oldest supported
	// generation.
	legacyMaxStride = 8192
)

// pickModifier intersects the caller's acceptable modifiers with the device's
// preference order and returns the earliest device-preferred match. The
// device order is authoritative; the caller's ordering is ignored.
func pickModifier(requested []Modifier, deviceOrder []Modifier) (Modifier, error) {
	for _, modifier := range deviceOrder {
		if slices.Contains(requested, modifier) {
			return modifier, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedRequest,
		"none of the %d caller-supplied layout modifiers is supported by this device", len(requested))
}

// resolveModifier picks exactly one layout modifier for a request, then
// applies the generation-specific downgrade rewrites in fixed order.
func (r *Resolver) resolveModifier(format Format, width int, use UseFlags, modifiers []Modifier) (Modifier, error) {
	var modifier Modifier
	if len(modifiers) > 0 {
		picked, err := pickModifier(modifiers, r.profile.modifierOrder)
		if err != nil {
			return 0, err
		}
		modifier = picked
	} else {
		combo, ok := r.matrix.lookup(format, use)
		if !ok {
			return 0, errors.Wrapf(ErrUnsupportedRequest,
				"no capability for format %s with usage %s", format, use)
		}
		modifier = combo.descriptor.modifier
	}

	// Before gen 11 only linear and X-tiled work above 4096 pixels wide.
	// Video decode produces Y-tiled NV12/P010, so those formats stay exempt.
	hugeSurface := r.profile.Gen < 11 && width > hugeWidthThreshold
	if hugeSurface && format != FormatNV12 && format != FormatP010 &&
		modifier != ModifierXTiled && modifier != ModifierLinear {
		if slices.Contains(modifiers, ModifierXTiled) {
			modifier = ModifierXTiled
		} else {
			modifier = ModifierLinear
		}
	}

	// The compressed layout is withheld when compression is disabled for the
	// context; keep plain Y-tiled if the caller offered it.
	if !r.compression && modifier == ModifierYTiledCCS {
		if slices.Contains(modifiers, ModifierYTiled) {
			modifier = ModifierYTiled
		} else {
			modifier = ModifierLinear
		}
	}

	return modifier, nil
}

// tilingFromModifier maps a resolved modifier to its tiling mode. Every
// modifier the matrix or the preference order can produce is covered; anything
// else is a contract violation.
func tilingFromModifier(modifier Modifier) (TilingMode, error) {
	switch modifier {
	case ModifierLinear:
		return TilingNone, nil
	case ModifierXTiled:
		return TilingX, nil
	case ModifierYTiled, ModifierYTiledCCS:
		return TilingY, nil
	}
	return 0, errors.AssertionFailedf("layout modifier %s has no tiling mode", modifier)
}

package i915

import (
	"sync"

	"github.com/dolthub/swiss"
)

// genBaseline is the generation assumed for device ids absent from every
// membership list. Unknown parts degrade gracefully instead of failing.
const genBaseline uint32 = 4

var gen3IDs = []uint16{
	0x2582, 0x2592, 0x2772, 0x27A2, 0x27AE,
	0x29C2, 0x29B2, 0x29D2, 0xA001, 0xA011,
}

var gen11IDs = []uint16{0x4E71, 0x4E61, 0x4E51, 0x4E55, 0x4E57}

var gen12IDs = []uint16{
	0x9A40, 0x9A49, 0x9A59, 0x9A60, 0x9A68, 0x9A70,
	0x9A78, 0x9AC0, 0x9AC9, 0x9AD9, 0x9AF8,
}

var adlpIDs = []uint16{
	0x46A0, 0x46A1, 0x46A2, 0x46A3, 0x46A6, 0x46A8,
	0x46AA, 0x462A, 0x4626, 0x4628, 0x46B0, 0x46B1,
	0x46B2, 0x46B3, 0x46C0, 0x46C1, 0x46C2, 0x46C3,
}

var (
	deviceTableOnce sync.Once
	generationTable *swiss.Map[uint16, uint32]
	adlpTable       *swiss.Map[uint16, struct{}]
)

func deviceTables() (*swiss.Map[uint16, uint32], *swiss.Map[uint16, struct{}]) {
	deviceTableOnce.Do(func() {
		count := len(gen3IDs) + len(gen11IDs) + len(gen12IDs)
		generationTable = swiss.NewMap[uint16, uint32](uint32(count))
		for _, id := range gen3IDs {
			generationTable.Put(id, 3)
		}
		for _, id := range gen11IDs {
			generationTable.Put(id, 11)
		}
		for _, id := range gen12IDs {
			generationTable.Put(id, 12)
		}

		adlpTable = swiss.NewMap[uint16, struct{}](uint32(len(adlpIDs)))
		for _, id := range adlpIDs {
			adlpTable.Put(id, struct{}{})
		}
	})
	return generationTable, adlpTable
}

// DeviceProfile captures everything layout resolution needs to know about one
// piece of hardware: its generation tier and feature flags. It is immutable
// once built and safe for concurrent reads.
type DeviceProfile struct {
	// DeviceID is the 16-bit chipset identifier the profile was derived from.
	DeviceID uint16
	// Gen is the hardware generation ordinal driving alignment rules.
	Gen uint32
	// HasLLC reports whether buffers are coherent with the CPU's last-level
	// cache, making explicit flushes unnecessary.
	HasLLC bool
	// HasHWProtection reports whether the part can back protected content.
	HasHWProtection bool
	// IsADLP marks the variant whose tiled buffers require power-of-two
	// strides.
	IsADLP bool

	modifierOrder []Modifier
}

// NewDeviceProfile classifies a chipset id into a capability profile. Ids not
// present in any membership list fall back to the baseline generation.
func NewDeviceProfile(deviceID uint16, hasLLC bool) *DeviceProfile {
	generations, adlp := deviceTables()

	profile := &DeviceProfile{
		DeviceID: deviceID,
		Gen:      genBaseline,
		HasLLC:   hasLLC,
	}
	if gen, ok := generations.Get(deviceID); ok {
		profile.Gen = gen
	}
	// The variant check runs last and wins over the tier lists.
	if _, ok := adlp.Get(deviceID); ok {
		profile.IsADLP = true
		profile.Gen = 12
	}

	if profile.Gen >= 12 {
		profile.HasHWProtection = true
	}

	profile.modifierOrder = []Modifier{
		ModifierYTiledCCS, ModifierYTiled, ModifierXTiled, ModifierLinear,
	}
	return profile
}

// ModifierOrder is the device's layout preference list, most preferred first.
func (p *DeviceProfile) ModifierOrder() []Modifier {
	order := make([]Modifier, len(p.modifierOrder))
	copy(order, p.modifierOrder)
	return order
}

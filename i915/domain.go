package i915

import "github.com/FydeOS-ArcHero/external-minigbm/memutils"

// MemoryDomain identifies the cache-coherency domain a mapping goes through.
type MemoryDomain uint32

const (
	// DomainCPU maps through the CPU cache domain.
	DomainCPU MemoryDomain = iota
	// DomainGTT maps through the GPU's translation table, which the hardware
	// keeps coherent with its own accesses.
	DomainGTT
)

func (d MemoryDomain) String() string {
	if d == DomainCPU {
		return "CPU"
	}
	return "GTT"
}

// MappingStrategy tells the device collaborator how a buffer should be made
// CPU-visible.
type MappingStrategy struct {
	Domain MemoryDomain
	// WriteCombined requests a write-combining mapping variant.
	WriteCombined bool
}

// mappingStrategyFor selects a mapping strategy from the resolved tiling and
// the request's usage. Linear buffers map through the CPU domain; tiled and
// compressed memory is not CPU-addressable linearly, so it always goes
// through the GTT.
func mappingStrategyFor(tiling TilingMode, use UseFlags) MappingStrategy {
	if tiling != TilingNone {
		return MappingStrategy{Domain: DomainGTT}
	}

	strategy := MappingStrategy{Domain: DomainCPU}
	// Write-combined mappings hurt the latency-sensitive camera and
	// RenderScript paths, so only scanout-only buffers get one.
	if use&UseScanout != 0 &&
		use&(UseRenderScript|UseCameraRead|UseCameraWrite) == 0 {
		strategy.WriteCombined = true
	}
	return strategy
}

// invalidateDomain is the coherency domain a mapped buffer must be moved to
// before CPU access.
func invalidateDomain(tiling TilingMode) MemoryDomain {
	if tiling == TilingNone {
		return DomainCPU
	}
	return DomainGTT
}

// needsExplicitFlush reports whether CPU writes must be followed by an
// explicit cache-line flush. Only linear surfaces on parts without a coherent
// last-level cache need this; tiled surfaces always map through the GTT.
func needsExplicitFlush(profile *DeviceProfile, tiling TilingMode) bool {
	return !profile.HasLLC && tiling == TilingNone
}

// flushRange widens [base, base+size) to cache-line boundaries and returns
// the aligned base and length to hand to the flush collaborator.
func flushRange(base uintptr, size int) (uintptr, int) {
	start := memutils.AlignDown(int(base), cachelineSize)
	end := memutils.AlignUp(int(base)+size, cachelineSize)
	return uintptr(start), end - start
}

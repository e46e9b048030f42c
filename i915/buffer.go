package i915

import (
	"github.com/cockroachdb/errors"

	"github.com/FydeOS-ArcHero/external-minigbm/i915/internal/utils"
)

// Buffer is a created buffer object together with its resolved layout.
type Buffer struct {
	allocator *Allocator
	handle    BufferHandle
	layout    *BufferLayout
	use       UseFlags

	mapMutex      utils.OptionalMutex
	mapReferences int
	mapAddr       uintptr
}

func (b *Buffer) Handle() BufferHandle {
	return b.handle
}

// Layout returns the resolved physical layout. The caller must not mutate it.
func (b *Buffer) Layout() *BufferLayout {
	return b.layout
}

// Map makes the buffer CPU-visible and returns the mapped address. Repeated
// calls share one mapping. Compressed buffers cannot be mapped; the control
// surface's interpretation is private to the hardware.
func (b *Buffer) Map() (uintptr, error) {
	if b.layout.Modifier == ModifierYTiledCCS {
		return 0, errors.Wrap(ErrUnsupportedRequest, "compressed buffers have no CPU mapping")
	}

	b.mapMutex.Lock()
	defer b.mapMutex.Unlock()

	if b.mapReferences > 0 {
		b.mapReferences++
		return b.mapAddr, nil
	}

	strategy := mappingStrategyFor(b.layout.Tiling, b.use)
	addr, err := b.allocator.device.Map(b.handle, b.layout.TotalSize, strategy)
	if err != nil {
		return 0, errors.Wrap(err, "failed to map buffer object")
	}

	b.mapAddr = addr
	b.mapReferences = 1
	return addr, nil
}

// Unmap releases one Map reference; the device mapping is torn down when the
// last reference goes away.
func (b *Buffer) Unmap() error {
	b.mapMutex.Lock()
	defer b.mapMutex.Unlock()

	if b.mapReferences == 0 {
		return errors.New("unmapping a buffer that is not mapped")
	}

	b.mapReferences--
	if b.mapReferences > 0 {
		return nil
	}

	addr := b.mapAddr
	b.mapAddr = 0
	return b.allocator.device.Unmap(addr, b.layout.TotalSize)
}

// Invalidate moves the buffer into the coherency domain CPU access needs:
// the CPU domain for linear buffers, the GTT domain otherwise.
func (b *Buffer) Invalidate(forWrite bool) error {
	return b.allocator.device.SetDomain(b.handle, invalidateDomain(b.layout.Tiling), forWrite)
}

// Flush makes CPU writes visible to the device. It issues an explicit
// cache-line flush over the mapped region only when the hardware lacks a
// coherent last-level cache and the buffer is linear; in every other case
// coherency is already guaranteed.
func (b *Buffer) Flush() error {
	b.mapMutex.Lock()
	defer b.mapMutex.Unlock()

	if b.mapReferences == 0 {
		return errors.New("flushing a buffer that is not mapped")
	}

	if !needsExplicitFlush(b.allocator.profile, b.layout.Tiling) {
		return nil
	}

	base, length := flushRange(b.mapAddr, b.layout.TotalSize)
	return b.allocator.device.FlushCache(base, length)
}

// Destroy releases the backing object. The buffer must not be mapped.
func (b *Buffer) Destroy() error {
	b.mapMutex.Lock()
	defer b.mapMutex.Unlock()

	if b.mapReferences != 0 {
		return errors.New("destroying a buffer that is still mapped")
	}

	if err := b.allocator.device.DestroyBuffer(b.handle); err != nil {
		return errors.Wrap(err, "failed to destroy buffer object")
	}

	b.allocator.statsMutex.Lock()
	b.allocator.stats.RemoveAllocation(b.layout.TotalSize)
	b.allocator.statsMutex.Unlock()
	return nil
}

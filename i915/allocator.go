package i915

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"

	"github.com/FydeOS-ArcHero/external-minigbm/i915/internal/utils"
	"github.com/FydeOS-ArcHero/external-minigbm/memutils"
)

// BufferHandle is an opaque handle to a buffer object owned by the device
// collaborator.
type BufferHandle uint32

// Device is the narrow capability surface the allocator drives. It is the
// only part of the pipeline that performs I/O or owns system resources; the
// allocator imposes no ordering on it beyond resolving a layout before
// creating an object and knowing the tiling before choosing how to map.
type Device interface {
	// ChipsetID reports the 16-bit hardware identifier.
	ChipsetID() (uint16, error)
	// HasLLC reports whether buffers are coherent with the CPU's last-level
	// cache.
	HasLLC() (bool, error)

	// CreateBuffer creates a buffer object of the given byte size, backed by
	// protected memory when requested.
	CreateBuffer(size int, protected bool) (BufferHandle, error)
	DestroyBuffer(handle BufferHandle) error

	// SetTiling registers a tiling mode and row stride with the object. Only
	// plane 0's stride is registered, even for multi-plane layouts.
	SetTiling(handle BufferHandle, tiling TilingMode, stride int) error
	// GetTiling reads back the tiling mode of an object created elsewhere.
	GetTiling(handle BufferHandle) (TilingMode, error)

	Map(handle BufferHandle, size int, strategy MappingStrategy) (uintptr, error)
	Unmap(addr uintptr, size int) error
	// SetDomain moves the object into the given coherency domain, optionally
	// for writing.
	SetDomain(handle BufferHandle, domain MemoryDomain, forWrite bool) error
	// FlushCache flushes the CPU cache lines covering [base, base+length).
	FlushCache(base uintptr, length int) error
}

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var allocatorCreateFlagsMapping = utils.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	allocatorCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return allocatorCreateFlagsMapping.FlagsToString(f)
}

const (
	// AllocatorCreateExternallySynchronized ensures that this allocator and the buffers created from it
	// will not be synchronized internally. The consumer must guarantee they are used from only one
	// thread at a time or are synchronized by some other mechanism, but performance may improve because
	// internal mutexes are not used.
	AllocatorCreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	AllocatorCreateExternallySynchronized.Register("AllocatorCreateExternallySynchronized")
}

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags
	// Resolver carries the layout-resolution settings.
	Resolver ResolverOptions
}

// Allocator resolves buffer layouts for one device and creates the backing
// objects through the device collaborator.
type Allocator struct {
	*Resolver

	logger   *slog.Logger
	device   Device
	useMutex bool

	statsMutex utils.OptionalRWMutex
	stats      memutils.DetailedStatistics
}

// New queries the device's identity parameters, classifies them into a
// capability profile, and builds an allocator around the resulting resolver.
//
// logger - destination for debug output
//
// device - the collaborator that owns buffer objects and mappings
//
// options - optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, device Device, options CreateOptions) (*Allocator, error) {
	deviceID, err := device.ChipsetID()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query the chipset id")
	}

	hasLLC, err := device.HasLLC()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query last-level-cache coherency")
	}

	useMutex := options.Flags&AllocatorCreateExternallySynchronized == 0
	profile := NewDeviceProfile(deviceID, hasLLC)

	allocator := &Allocator{
		Resolver: NewResolver(logger, profile, options.Resolver),
		logger:   logger,
		device:   device,
		useMutex: useMutex,
	}
	allocator.statsMutex.UseMutex = useMutex
	allocator.stats.Clear()

	return allocator, nil
}

// CreateBuffer resolves a layout for the request and creates the backing
// object. A failed request leaves the allocator untouched and reusable.
func (a *Allocator) CreateBuffer(format Format, width, height int, use UseFlags, modifiers []Modifier) (*Buffer, error) {
	layout, err := a.ResolveLayout(format, width, height, use, modifiers)
	if err != nil {
		return nil, err
	}

	protected := a.profile.HasHWProtection && use&UseProtected != 0
	handle, err := a.device.CreateBuffer(layout.TotalSize, protected)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create a %d-byte buffer object", layout.TotalSize)
	}

	if err := a.device.SetTiling(handle, layout.Tiling, layout.Planes[0].Stride); err != nil {
		destroyErr := a.device.DestroyBuffer(handle)
		if destroyErr != nil {
			a.logger.LogAttrs(context.Background(), slog.LevelWarn,
				"failed to destroy buffer object after tiling registration failed",
				slog.Uint64("handle", uint64(handle)))
		}
		return nil, errors.Wrap(err, "failed to register tiling on the new buffer object")
	}

	a.statsMutex.Lock()
	a.stats.AddDetailedAllocation(layout.TotalSize)
	a.statsMutex.Unlock()

	return a.wrapBuffer(handle, layout, use), nil
}

// ImportBuffer wraps a buffer object created by another allocator. The
// authoritative tiling mode is read back from the device rather than
// recomputed, since the exporter's negotiation already fixed it.
func (a *Allocator) ImportBuffer(handle BufferHandle, layout *BufferLayout, use UseFlags) (*Buffer, error) {
	tiling, err := a.device.GetTiling(handle)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tiling from the imported buffer object")
	}

	adopted := *layout
	adopted.Planes = append([]Plane(nil), layout.Planes...)
	adopted.Tiling = tiling

	a.statsMutex.Lock()
	a.stats.AddDetailedAllocation(adopted.TotalSize)
	a.statsMutex.Unlock()

	return a.wrapBuffer(handle, &adopted, use), nil
}

func (a *Allocator) wrapBuffer(handle BufferHandle, layout *BufferLayout, use UseFlags) *Buffer {
	buffer := &Buffer{
		allocator: a,
		handle:    handle,
		layout:    layout,
		use:       use,
	}
	buffer.mapMutex.UseMutex = a.useMutex
	return buffer
}

// Statistics returns a snapshot of the allocator's live-buffer accounting.
func (a *Allocator) Statistics() memutils.Statistics {
	a.statsMutex.RLock()
	defer a.statsMutex.RUnlock()
	return a.stats.Statistics
}

// DetailedStatistics additionally reports the size extremes of the
// allocations made so far.
func (a *Allocator) DetailedStatistics() memutils.DetailedStatistics {
	a.statsMutex.RLock()
	defer a.statsMutex.RUnlock()
	return a.stats
}

// BuildStatsString dumps the allocator state, including the full capability
// matrix, as a JSON string.
func (a *Allocator) BuildStatsString() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()

	obj.Name("DeviceID").Int(int(a.profile.DeviceID))
	obj.Name("Gen").Int(int(a.profile.Gen))
	obj.Name("HasLLC").Bool(a.profile.HasLLC)
	obj.Name("HasHWProtection").Bool(a.profile.HasHWProtection)
	obj.Name("Compression").Bool(a.compression)

	a.statsMutex.RLock()
	obj.Name("AllocationCount").Int(a.stats.AllocationCount)
	obj.Name("AllocationBytes").Int(a.stats.AllocationBytes)
	if a.stats.AllocationCount > 0 {
		obj.Name("AllocationSizeMin").Int(a.stats.AllocationSizeMin)
		obj.Name("AllocationSizeMax").Int(a.stats.AllocationSizeMax)
	}
	a.statsMutex.RUnlock()

	matrixObj := obj.Name("Capabilities").Object()
	a.matrix.printJSON(&matrixObj)
	matrixObj.End()

	obj.End()
	return string(writer.Bytes())
}

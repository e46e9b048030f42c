package i915

import (
	"context"
	"os"

	"golang.org/x/exp/slog"

	"github.com/FydeOS-ArcHero/external-minigbm/memutils"
)

const (
	// linearAlignmentDefault keeps linear rows starting on a cache line.
	linearAlignmentDefault = 64
	// linearAlignmentCrossDevice matches the 256-byte linear stride other
	// devices require when importing these buffers.
	linearAlignmentCrossDevice = 256
)

// ResolverOptions contains optional settings when creating a Resolver.
type ResolverOptions struct {
	// DisableCompression withholds the compressed layout from both the
	// capability matrix and modifier negotiation.
	DisableCompression bool
	// CrossDeviceLinearAlignment aligns linear strides to 256 bytes so the
	// buffers can be imported by devices that require it.
	CrossDeviceLinearAlignment bool
}

// Resolver turns buffer requests into concrete physical layouts for one
// device. All of its work is pure computation over the immutable capability
// profile and matrix, so a Resolver is safe for concurrent use.
type Resolver struct {
	logger  *slog.Logger
	profile *DeviceProfile
	matrix  *capabilityMatrix

	compression     bool
	linearAlignment int
	pageSize        int
}

// NewResolver builds the capability matrix for the profile and returns a
// layout resolver.
func NewResolver(logger *slog.Logger, profile *DeviceProfile, options ResolverOptions) *Resolver {
	resolver := &Resolver{
		logger:          logger,
		profile:         profile,
		compression:     !options.DisableCompression,
		linearAlignment: linearAlignmentDefault,
		pageSize:        os.Getpagesize(),
	}
	if options.CrossDeviceLinearAlignment {
		resolver.linearAlignment = linearAlignmentCrossDevice
	}
	resolver.matrix = newCapabilityMatrix(profile, resolver.compression)

	logger.LogAttrs(context.Background(), slog.LevelDebug, "built layout capability matrix",
		slog.Int("deviceID", int(profile.DeviceID)),
		slog.Int("gen", int(profile.Gen)),
		slog.Bool("compression", resolver.compression))

	return resolver
}

// Profile returns the device capability profile this resolver was built for.
func (r *Resolver) Profile() *DeviceProfile {
	return r.profile
}

// ResolveLayout runs the full pipeline for one request: modifier negotiation,
// downgrade rewrites, and plane layout computation. The modifiers slice is
// the caller's ordered list of acceptable layout modifiers; pass nil to have
// the capability matrix choose from the usage flags instead.
//
// Resolution is deterministic: the same request always produces the same
// layout, and a failed request leaves no state behind.
func (r *Resolver) ResolveLayout(format Format, width, height int, use UseFlags, modifiers []Modifier) (*BufferLayout, error) {
	modifier, err := r.resolveModifier(format, width, use, modifiers)
	if err != nil {
		return nil, err
	}

	layout, err := r.computeLayout(format, width, height, modifier)
	if err != nil {
		return nil, err
	}
	memutils.DebugValidate(layout)

	r.logger.LogAttrs(context.Background(), slog.LevelDebug, "resolved buffer layout",
		slog.String("format", format.String()),
		slog.Int("width", width),
		slog.Int("height", height),
		slog.String("modifier", modifier.String()),
		slog.Int("totalSize", layout.TotalSize))

	return layout, nil
}

package i915

import "github.com/pkg/errors"

// ErrUnsupportedRequest is returned when no layout can serve a request:
// either the capability matrix has no entry for the format/usage pair, or the
// caller's modifier list shares nothing with the device's preference order.
var ErrUnsupportedRequest = errors.New("no supported layout for this request")

// ErrHardwareLimit is returned when a computed stride exceeds the fixed
// row-pitch ceiling of legacy hardware generations.
var ErrHardwareLimit = errors.New("stride exceeds the hardware row-pitch limit")

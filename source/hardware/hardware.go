// Package hardware adapts live RGB-D cameras to the source contract. The
// core never sees an SDK type: a vendor backend implements Device and
// registers a factory for the source type it serves, and availability is
// negotiated at construction time rather than compiled in.
package hardware

import (
	"fmt"
	"sync"

	"github.com/edaniels/golog"

	"github.com/densevision/rgbdsource/frame"
	"github.com/densevision/rgbdsource/source"
)

// DeviceConfig is what a backend needs to open a stream.
type DeviceConfig struct {
	// Path identifies the device, or a vendor recording to play back.
	// Empty means any attached device.
	Path string

	// FPS is the requested stream rate. 0 lets the backend pick its default.
	FPS int
}

// A Device is the minimal collaborator contract a vendor SDK binding must
// satisfy: open a fixed-resolution stream, block until a frame is ready and
// deliver it into caller-provided buffers, and release cleanly.
type Device interface {
	Open(cfg DeviceConfig) (frame.Resolution, frame.Intrinsics, error)
	WaitFrame(depth []frame.Depth, color []frame.RGB) error
	Close() error
}

// A Factory builds an unopened device.
type Factory func(logger golog.Logger) Device

var (
	driversMu sync.RWMutex
	drivers   = map[source.Type]Factory{}
)

// RegisterDriver installs a backend for one of the hardware source types.
func RegisterDriver(t source.Type, f Factory) {
	if t != source.TypeStructuredLight && t != source.TypeDepthCamera {
		panic(fmt.Sprintf("cannot register a device driver for source type %s", t))
	}
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[t] = f
}

// lookupDriver returns the backend for a type, if one was linked in.
func lookupDriver(t source.Type) (Factory, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	f, ok := drivers[t]
	return f, ok
}

// A FatalError marks a device fault after which any further frame would be
// garbage. The adapter terminates the process when it sees one; every other
// device error just deactivates the source.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "unrecoverable device error: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Package fake provides a synthetic in-memory device backend. Importing it
// registers the backend for both hardware source types, which is enough to
// exercise the full live-camera path in tests and benchmarks without any
// vendor SDK.
package fake

import (
	"github.com/edaniels/golog"

	"github.com/densevision/rgbdsource/frame"
	"github.com/densevision/rgbdsource/source"
	"github.com/densevision/rgbdsource/source/hardware"
)

const (
	defaultWidth  = 640
	defaultHeight = 480
)

var fakeIntrinsics = frame.Intrinsics{Fx: 481.2, Fy: 480, Ppx: defaultWidth / 2, Ppy: defaultHeight / 2}

func init() {
	for _, t := range []source.Type{source.TypeStructuredLight, source.TypeDepthCamera} {
		hardware.RegisterDriver(t, func(logger golog.Logger) hardware.Device {
			return NewDevice(defaultWidth, defaultHeight)
		})
	}
}

// Device generates gradient depth and color frames. The gradient shifts by
// one millimeter per frame so consecutive frames are distinguishable.
type Device struct {
	res   frame.Resolution
	frame int
	open  bool
}

// NewDevice returns an unopened synthetic device at the given resolution.
func NewDevice(width, height int) *Device {
	return &Device{res: frame.Resolution{Width: width, Height: height}}
}

// Open starts the synthetic stream.
func (d *Device) Open(hardware.DeviceConfig) (frame.Resolution, frame.Intrinsics, error) {
	d.open = true
	d.frame = 0
	return d.res, fakeIntrinsics, nil
}

// WaitFrame fills the requested channels with the next gradient frame.
func (d *Device) WaitFrame(depth []frame.Depth, color []frame.RGB) error {
	if !d.open {
		return &hardware.FatalError{Err: source.ErrNotOpen}
	}
	for y := 0; y < d.res.Height; y++ {
		for x := 0; x < d.res.Width; x++ {
			i := y*d.res.Width + x
			if depth != nil {
				depth[i] = frame.Depth(500 + x + y + d.frame)
			}
			if color != nil {
				color[i] = frame.RGB{R: uint8(x), G: uint8(y), B: uint8(d.frame)}
			}
		}
	}
	d.frame++
	return nil
}

// Close stops the synthetic stream.
func (d *Device) Close() error {
	d.open = false
	return nil
}

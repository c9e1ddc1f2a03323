// Package frame holds the value types shared by every RGB-D source: depth and
// color samples, fixed resolutions, and pinhole intrinsics.
package frame

import "fmt"

// Depth is a single depth sample in millimeters.
type Depth uint16

// MaxDepth is the largest representable depth sample.
const MaxDepth = Depth(^uint16(0))

// Meters converts a millimeter sample to meters.
func (d Depth) Meters() float32 {
	return float32(d) / 1000.0
}

// DepthFromMeters converts a depth in meters to a millimeter sample.
func DepthFromMeters(m float32) Depth {
	return Depth(m * 1000.0)
}

// RGB is a 3-byte color sample.
type RGB struct {
	R, G, B uint8
}

// Resolution is the fixed size of every buffer a source fills. It never
// changes over the lifetime of a source instance.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Area returns the per-frame sample count.
func (r Resolution) Area() int {
	return r.Width * r.Height
}

// Valid reports whether both dimensions are positive.
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Intrinsics are the pinhole camera parameters of a source: focal lengths and
// principal point, in pixels.
type Intrinsics struct {
	Fx  float64
	Fy  float64
	Ppx float64
	Ppy float64
}

// NewDepthBuffer allocates a depth buffer sized for one frame. Callers are
// expected to allocate once and reuse it across reads.
func NewDepthBuffer(res Resolution) []Depth {
	return make([]Depth, res.Area())
}

// NewColorBuffer allocates a color buffer sized for one frame.
func NewColorBuffer(res Resolution) []RGB {
	return make([]RGB, res.Area())
}

// NewMetersBuffer allocates a float depth buffer sized for one frame.
func NewMetersBuffer(res Resolution) []float32 {
	return make([]float32, res.Area())
}

// DepthToMeters rescales a millimeter frame into a float meters frame. Both
// buffers must be at least as large as the frame.
func DepthToMeters(dst []float32, src []Depth) {
	for i, d := range src {
		dst[i] = d.Meters()
	}
}

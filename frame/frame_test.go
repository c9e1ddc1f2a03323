package frame

import (
	"testing"

	"go.viam.com/test"
)

func TestDepthConversions(t *testing.T) {
	test.That(t, Depth(1500).Meters(), test.ShouldAlmostEqual, 1.5, 1e-6)
	test.That(t, DepthFromMeters(1.5), test.ShouldEqual, Depth(1500))
	test.That(t, Depth(0).Meters(), test.ShouldEqual, float32(0))
}

func TestDepthToMeters(t *testing.T) {
	src := []Depth{0, 500, 2000}
	dst := make([]float32, 3)
	DepthToMeters(dst, src)
	test.That(t, dst, test.ShouldResemble, []float32{0, 0.5, 2})
}

func TestResolution(t *testing.T) {
	res := Resolution{Width: 640, Height: 480}
	test.That(t, res.Area(), test.ShouldEqual, 307200)
	test.That(t, res.String(), test.ShouldEqual, "640x480")
	test.That(t, res.Valid(), test.ShouldBeTrue)
	test.That(t, Resolution{}.Valid(), test.ShouldBeFalse)
	test.That(t, Resolution{Width: -1, Height: 480}.Valid(), test.ShouldBeFalse)
}

func TestBuffers(t *testing.T) {
	res := Resolution{Width: 4, Height: 2}
	test.That(t, NewDepthBuffer(res), test.ShouldHaveLength, 8)
	test.That(t, NewColorBuffer(res), test.ShouldHaveLength, 8)
	test.That(t, NewMetersBuffer(res), test.ShouldHaveLength, 8)
}

package fake_test

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/densevision/rgbdsource/frame"
	"github.com/densevision/rgbdsource/source"
	_ "github.com/densevision/rgbdsource/source/hardware/fake"
)

func TestRegisteredForBothHardwareTypes(t *testing.T) {
	logger := golog.NewTestLogger(t)

	for _, typ := range []source.Type{source.TypeStructuredLight, source.TypeDepthCamera} {
		s, err := source.Open(typ, source.Config{DataPath: "fake"}, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.Type(), test.ShouldEqual, typ)
		test.That(t, s.Resolution(), test.ShouldResemble, frame.Resolution{Width: 640, Height: 480})

		depth := frame.NewDepthBuffer(s.Resolution())
		color := frame.NewColorBuffer(s.Resolution())

		test.That(t, s.NextFrame(color, depth), test.ShouldBeNil)
		first := depth[0]
		test.That(t, s.NextFrame(color, depth), test.ShouldBeNil)
		// consecutive frames are distinguishable
		test.That(t, depth[0], test.ShouldEqual, first+1)

		test.That(t, s.Close(), test.ShouldBeNil)
	}
}

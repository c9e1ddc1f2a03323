package hardware

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/densevision/rgbdsource/frame"
	"github.com/densevision/rgbdsource/source"
)

var testRes = frame.Resolution{Width: 4, Height: 3}

// testDevice is a scripted backend: it delivers constant frames until
// failAfter reads, then returns failErr.
type testDevice struct {
	res       frame.Resolution
	reads     int
	failAfter int
	failErr   error
	closed    bool
}

func (d *testDevice) Open(DeviceConfig) (frame.Resolution, frame.Intrinsics, error) {
	return d.res, frame.Intrinsics{Fx: 500, Fy: 500, Ppx: 2, Ppy: 1.5}, nil
}

func (d *testDevice) WaitFrame(depth []frame.Depth, color []frame.RGB) error {
	if d.failAfter > 0 && d.reads >= d.failAfter {
		return d.failErr
	}
	d.reads++
	for i := range depth {
		depth[i] = frame.Depth(100 + d.reads)
	}
	for i := range color {
		color[i] = frame.RGB{R: uint8(d.reads)}
	}
	return nil
}

func (d *testDevice) Close() error {
	d.closed = true
	return nil
}

func TestAdapterReads(t *testing.T) {
	dev := &testDevice{res: testRes}
	RegisterDriver(source.TypeStructuredLight, func(golog.Logger) Device { return dev })

	s, err := NewSource(source.TypeStructuredLight, source.Config{DataPath: "any"}, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.IsOpen(), test.ShouldBeTrue)
	test.That(t, s.IsActive(), test.ShouldBeTrue)
	test.That(t, s.Type(), test.ShouldEqual, source.TypeStructuredLight)
	test.That(t, s.Resolution(), test.ShouldResemble, testRes)
	test.That(t, s.Intrinsics().Fx, test.ShouldEqual, 500)

	depth := frame.NewDepthBuffer(testRes)
	color := frame.NewColorBuffer(testRes)
	test.That(t, s.NextFrame(color, depth), test.ShouldBeNil)
	test.That(t, s.FrameIndex(), test.ShouldEqual, 0)
	test.That(t, depth[0], test.ShouldEqual, frame.Depth(101))
	test.That(t, color[0].R, test.ShouldEqual, uint8(1))

	test.That(t, s.NextFrame(nil, depth), test.ShouldBeNil)
	test.That(t, depth[0], test.ShouldEqual, frame.Depth(102))

	meters := frame.NewMetersBuffer(testRes)
	test.That(t, s.NextDepthMeters(meters), test.ShouldBeNil)
	test.That(t, meters[0], test.ShouldAlmostEqual, 0.103, 1e-6)

	test.That(t, s.Restart(), test.ShouldBeNil)
	test.That(t, s.FrameIndex(), test.ShouldEqual, -1)

	test.That(t, s.Close(), test.ShouldBeNil)
	test.That(t, dev.closed, test.ShouldBeTrue)
	test.That(t, s.IsOpen(), test.ShouldBeFalse)

	err = s.NextFrame(nil, depth)
	test.That(t, errors.Is(err, source.ErrNotOpen), test.ShouldBeTrue)
}

func TestDeviceFaultDeactivates(t *testing.T) {
	dev := &testDevice{res: testRes, failAfter: 1, failErr: errors.New("usb gone")}
	RegisterDriver(source.TypeStructuredLight, func(golog.Logger) Device { return dev })

	s, err := NewSource(source.TypeStructuredLight, source.Config{DataPath: "any"}, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, s.Close(), test.ShouldBeNil)
	}()

	depth := frame.NewDepthBuffer(testRes)
	test.That(t, s.NextFrame(nil, depth), test.ShouldBeNil)

	err = s.NextFrame(nil, depth)
	test.That(t, err, test.ShouldNotBeNil)

	// open but no longer active
	test.That(t, s.IsOpen(), test.ShouldBeTrue)
	test.That(t, s.IsActive(), test.ShouldBeFalse)

	err = s.NextFrame(nil, depth)
	test.That(t, errors.Is(err, source.ErrNotOpen), test.ShouldBeTrue)
}

func TestNoGroundTruth(t *testing.T) {
	dev := &testDevice{res: testRes}
	RegisterDriver(source.TypeStructuredLight, func(golog.Logger) Device { return dev })

	s, err := NewSource(source.TypeStructuredLight, source.Config{DataPath: "any"}, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, s.Close(), test.ShouldBeNil)
	}()

	err = s.NextSynced(nil, nil, nil)
	test.That(t, errors.Is(err, source.ErrNoGroundTruth), test.ShouldBeTrue)
}

func TestMissingBackend(t *testing.T) {
	// nothing registers a depth-camera driver in this package
	_, err := NewSource(source.TypeDepthCamera, source.Config{DataPath: "any"}, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no depth-camera driver")
}

func TestRegisterDriverRejectsFileTypes(t *testing.T) {
	test.That(t, func() {
		RegisterDriver(source.TypeRawContainer, func(golog.Logger) Device { return &testDevice{} })
	}, test.ShouldPanic)
}

func TestFatalErrorUnwraps(t *testing.T) {
	inner := errors.New("wait failed")
	err := &FatalError{Err: inner}
	test.That(t, errors.Is(err, inner), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "wait failed")
}

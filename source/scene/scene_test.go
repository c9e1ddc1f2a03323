package scene

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/densevision/rgbdsource/frame"
	"github.com/densevision/rgbdsource/source"
)

// writeScene fills a dataset directory with constant-distance frames.
func writeScene(t *testing.T, frames int, distance float64) string {
	t.Helper()
	dir := t.TempDir()
	body := strings.Repeat(fmt.Sprintf("%g ", distance), sceneResolution.Area())
	for i := 0; i < frames; i++ {
		name := filepath.Join(dir, fmt.Sprintf("scene_00_%04d.depth", i))
		test.That(t, os.WriteFile(name, []byte(body), 0o600), test.ShouldBeNil)
	}
	return dir
}

func openTest(t *testing.T, dir string) *Source {
	t.Helper()
	s, err := NewSource(source.Config{DataPath: dir}, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() {
		test.That(t, s.Close(), test.ShouldBeNil)
	})
	return s
}

func TestRayToPlanarConversion(t *testing.T) {
	dir := writeScene(t, 1, 5.0)
	s := openTest(t, dir)

	test.That(t, s.Type(), test.ShouldEqual, source.TypeScene)
	test.That(t, s.Resolution(), test.ShouldResemble, sceneResolution)
	test.That(t, s.Intrinsics(), test.ShouldResemble, sceneIntrinsics)

	meters := frame.NewMetersBuffer(sceneResolution)
	test.That(t, s.NextDepthMeters(meters), test.ShouldBeNil)
	test.That(t, s.FrameIndex(), test.ShouldEqual, 0)

	// near the principal point the ray is almost the optical axis
	center := meters[240*sceneResolution.Width+320]
	test.That(t, center, test.ShouldAlmostEqual, 5.0, 1e-4)

	// at the corner the same ray length projects to a shorter planar depth
	corner := meters[0]
	test.That(t, corner, test.ShouldBeLessThan, center)
	x := (0 - sceneIntrinsics.Ppx) / sceneIntrinsics.Fx
	y := (0 - sceneIntrinsics.Ppy) / sceneIntrinsics.Fy
	want := 5.0 / math.Sqrt(x*x+y*y+1)
	test.That(t, corner, test.ShouldAlmostEqual, want, 1e-4)
}

func TestMillimeterFrames(t *testing.T) {
	dir := writeScene(t, 1, 2.0)
	s := openTest(t, dir)

	depth := frame.NewDepthBuffer(sceneResolution)
	test.That(t, s.NextFrame(nil, depth), test.ShouldBeNil)
	test.That(t, depth[240*sceneResolution.Width+320], test.ShouldAlmostEqual, 2000, 1)
}

func TestEndOfDataset(t *testing.T) {
	dir := writeScene(t, 2, 1.0)
	s := openTest(t, dir)

	meters := frame.NewMetersBuffer(sceneResolution)
	test.That(t, s.NextDepthMeters(meters), test.ShouldBeNil)
	test.That(t, s.NextDepthMeters(meters), test.ShouldBeNil)

	err := s.NextDepthMeters(meters)
	test.That(t, errors.Is(err, source.ErrEndOfStream), test.ShouldBeTrue)

	test.That(t, s.Restart(), test.ShouldBeNil)
	test.That(t, s.FrameIndex(), test.ShouldEqual, -1)
	test.That(t, s.NextDepthMeters(meters), test.ShouldBeNil)
	test.That(t, s.FrameIndex(), test.ShouldEqual, 0)
}

func TestGarbageFrameFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "scene_00_0000.depth")
	test.That(t, os.WriteFile(name, []byte("1.0 zero 2.0"), 0o600), test.ShouldBeNil)

	s := openTest(t, dir)
	meters := frame.NewMetersBuffer(sceneResolution)
	err := s.NextDepthMeters(meters)
	test.That(t, errors.Is(err, source.ErrTruncatedFrame), test.ShouldBeTrue)
}

func TestNoGroundTruthSupport(t *testing.T) {
	dir := writeScene(t, 1, 1.0)
	s := openTest(t, dir)

	err := s.NextSynced(nil, nil, nil)
	test.That(t, errors.Is(err, source.ErrNoGroundTruth), test.ShouldBeTrue)
}

func TestConstructionFailures(t *testing.T) {
	logger := golog.NewTestLogger(t)

	_, err := NewSource(source.Config{DataPath: filepath.Join(t.TempDir(), "nope")}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	// a plain file is not a dataset directory
	path := filepath.Join(t.TempDir(), "file")
	test.That(t, os.WriteFile(path, []byte("x"), 0o600), test.ShouldBeNil)
	_, err = NewSource(source.Config{DataPath: path}, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

// Package scene replays ICL-NUIM synthetic scene datasets: a directory of
// per-frame ASCII depth files, one float per pixel holding the euclidean ray
// length from the camera center.
package scene

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/densevision/rgbdsource/frame"
	"github.com/densevision/rgbdsource/pacer"
	"github.com/densevision/rgbdsource/source"
)

// The fixed ICL-NUIM camera model.
var (
	sceneResolution = frame.Resolution{Width: 640, Height: 480}
	sceneIntrinsics = frame.Intrinsics{Fx: 481.20, Fy: 480.00, Ppx: 319.50, Ppy: 239.50}
)

func init() {
	source.Register(source.TypeScene, func(cfg source.Config, logger golog.Logger) (source.Source, error) {
		return NewSource(cfg, logger)
	})
}

// Source reads scene_00_NNNN.depth files from a dataset directory. Depth in
// meters is the primary product; millimeter frames are derived from it and
// no color is ever produced.
type Source struct {
	source.NoGroundTruth

	logger golog.Logger
	dir    string
	pace   *pacer.Pacer
	open   bool

	// rayScale converts each pixel's ray length to planar depth; computed
	// once from the fixed intrinsics.
	rayScale []float32
	meters   []float32
}

// NewSource validates that the dataset directory exists.
func NewSource(cfg source.Config, logger golog.Logger) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(cfg.DataPath)
	if err != nil {
		return nil, errors.Wrapf(err, "no such directory %s", cfg.DataPath)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", cfg.DataPath)
	}
	return &Source{
		logger:   logger,
		dir:      cfg.DataPath,
		pace:     pacer.New(cfg.FPS, cfg.BlockingRead),
		open:     true,
		rayScale: rayScaleTable(sceneResolution, sceneIntrinsics),
		meters:   frame.NewMetersBuffer(sceneResolution),
	}, nil
}

// rayScaleTable precomputes, per pixel, the factor that projects a euclidean
// ray length onto the camera's optical axis.
func rayScaleTable(res frame.Resolution, k frame.Intrinsics) []float32 {
	table := make([]float32, res.Area())
	for v := 0; v < res.Height; v++ {
		for u := 0; u < res.Width; u++ {
			x := (float64(u) - k.Ppx) / k.Fx
			y := (float64(v) - k.Ppy) / k.Fy
			table[v*res.Width+u] = float32(1 / math.Sqrt(x*x+y*y+1))
		}
	}
	return table
}

// NextDepthMeters parses the depth file selected by the pacer and converts
// ray lengths to planar depth.
func (s *Source) NextDepthMeters(depth []float32) error {
	if !s.open {
		return source.ErrNotOpen
	}
	n := sceneResolution.Area()
	if len(depth) < n {
		return errors.Errorf("depth buffer holds %d samples, frame needs %d", len(depth), n)
	}

	idx := s.pace.Advance()
	name := filepath.Join(s.dir, fmt.Sprintf("scene_00_%04d.depth", idx))
	f, err := os.Open(name)
	if err != nil {
		// a missing frame file is the end of the dataset
		s.logger.Debugw("no more scene frames", "file", name)
		return source.ErrEndOfStream
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() && count < n {
		d, err := strconv.ParseFloat(scanner.Text(), 32)
		if err != nil {
			return errors.Wrapf(source.ErrTruncatedFrame, "bad depth value %q in %s", scanner.Text(), name)
		}
		depth[count] = float32(d)
		count++
	}
	if count == 0 {
		return errors.Wrapf(source.ErrTruncatedFrame, "no depth values in %s", name)
	}

	for i := 0; i < count; i++ {
		depth[i] *= s.rayScale[i]
	}
	return nil
}

// NextFrame derives a millimeter frame from the meters read. The color
// channel is never produced; a non-nil color buffer is left untouched.
func (s *Source) NextFrame(_ []frame.RGB, depth []frame.Depth) error {
	if err := s.NextDepthMeters(s.meters); err != nil {
		return err
	}
	if depth == nil {
		return nil
	}
	n := sceneResolution.Area()
	if len(depth) < n {
		return errors.Errorf("depth buffer holds %d samples, frame needs %d", len(depth), n)
	}
	for i := 0; i < n; i++ {
		depth[i] = frame.DepthFromMeters(s.meters[i])
	}
	return nil
}

// Intrinsics returns the fixed ICL-NUIM camera parameters.
func (s *Source) Intrinsics() frame.Intrinsics { return sceneIntrinsics }

// Resolution returns the fixed 640x480 scene size.
func (s *Source) Resolution() frame.Resolution { return sceneResolution }

// Restart rewinds playback to the pre-first-frame state.
func (s *Source) Restart() error {
	s.pace.Reset()
	return nil
}

// IsOpen reports whether the dataset directory was validly attached.
func (s *Source) IsOpen() bool { return s.open }

// IsActive mirrors IsOpen; a directory cannot disconnect mid-stream.
func (s *Source) IsActive() bool { return s.open }

// FrameIndex returns the current frame index, -1 before the first read.
func (s *Source) FrameIndex() int { return s.pace.Frame() }

// Type returns source.TypeScene.
func (s *Source) Type() source.Type { return source.TypeScene }

// Close marks the source not-open. There is no handle to release; frame
// files are opened per read.
func (s *Source) Close() error {
	s.open = false
	return nil
}

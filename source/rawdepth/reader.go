package rawdepth

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/densevision/rgbdsource/frame"
	"github.com/densevision/rgbdsource/groundtruth"
	"github.com/densevision/rgbdsource/pacer"
	"github.com/densevision/rgbdsource/source"
)

// DefaultIntrinsics are the pinhole parameters assumed for container files;
// the format itself carries no calibration.
var DefaultIntrinsics = frame.Intrinsics{Fx: 531.15, Fy: 531.15, Ppx: 320, Ppy: 240}

func init() {
	source.Register(source.TypeRawContainer, func(cfg source.Config, logger golog.Logger) (source.Source, error) {
		return NewSource(cfg, logger)
	})
}

// Source replays a recorded container file. Frames are addressed by absolute
// offset, so seeking, restarting, and dropping frames under pacing are all
// O(1) operations.
type Source struct {
	logger golog.Logger

	file      *os.File
	gt        *groundtruth.Reader
	pace      *pacer.Pacer
	res       frame.Resolution
	record    int64
	depthOnly bool

	open   bool
	active bool

	// scratch buffers, sized once from the resolution
	payload []byte
	depthMM []frame.Depth
}

// NewSource opens a container file described by the config. The leading
// dimension pair is validated eagerly; every failure path releases whatever
// was opened so a half-initialized source never escapes.
func NewSource(cfg source.Config, logger golog.Logger) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var gt *groundtruth.Reader
	if cfg.GroundTruthPath != "" {
		var err error
		gt, err = groundtruth.Open(cfg.GroundTruthPath, cfg.PoseTransform())
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(cfg.DataPath)
	if err != nil {
		return nil, multierr.Combine(errors.Wrap(err, "cannot open container file"), closeIfOpen(gt))
	}

	var dims [dimPairSize]byte
	if _, err := io.ReadFull(f, dims[:]); err != nil {
		return nil, multierr.Combine(
			errors.Wrapf(err, "invalid container file %s", cfg.DataPath),
			f.Close(), closeIfOpen(gt))
	}
	res := parseDims(dims[:])
	if !res.Valid() {
		return nil, multierr.Combine(
			errors.Errorf("invalid container resolution %s in %s", res, cfg.DataPath),
			f.Close(), closeIfOpen(gt))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, multierr.Combine(err, f.Close(), closeIfOpen(gt))
	}

	payloadSize := res.Area() * depthSampleSize
	if !cfg.DepthOnly {
		payloadSize = res.Area() * colorSampleSize
	}
	return &Source{
		logger:    logger,
		file:      f,
		gt:        gt,
		pace:      pacer.New(cfg.FPS, cfg.BlockingRead),
		res:       res,
		record:    recordSize(res, cfg.DepthOnly),
		depthOnly: cfg.DepthOnly,
		open:      true,
		active:    true,
		payload:   make([]byte, payloadSize),
		depthMM:   frame.NewDepthBuffer(res),
	}, nil
}

func closeIfOpen(gt *groundtruth.Reader) error {
	if gt == nil {
		return nil
	}
	return gt.Close()
}

// NextFrame reads the record selected by the pacer into the caller's
// buffers. Either buffer may be nil; the file cursor is seeked past a
// skipped channel so the record stays aligned.
func (s *Source) NextFrame(color []frame.RGB, depth []frame.Depth) error {
	if !s.open {
		return source.ErrNotOpen
	}

	idx := s.pace.Advance()
	if _, err := s.file.Seek(s.record*int64(idx), io.SeekStart); err != nil {
		return errors.Wrapf(err, "seeking to frame %d", idx)
	}

	if err := s.readDims(true); err != nil {
		return err
	}
	if err := s.readDepth(depth); err != nil {
		return err
	}
	if s.depthOnly {
		return nil
	}
	if err := s.readDims(false); err != nil {
		return err
	}
	return s.readColor(color)
}

// readDims reads and validates one dimension pair. At the head of a record a
// clean zero-byte read is the end of the stream; past it, any shortfall is
// garbage.
func (s *Source) readDims(recordHead bool) error {
	var buf [dimPairSize]byte
	_, err := io.ReadFull(s.file, buf[:])
	switch {
	case err == nil:
	case recordHead && errors.Is(err, io.EOF):
		return source.ErrEndOfStream
	default:
		s.logger.Debugw("end of file (garbage found)", "frame", s.pace.Frame(), "error", err)
		return errors.Wrap(source.ErrTruncatedFrame, err.Error())
	}
	if got := parseDims(buf[:]); got != s.res {
		return errors.Wrapf(source.ErrTruncatedFrame,
			"record dimensions %s do not match container resolution %s", got, s.res)
	}
	return nil
}

func (s *Source) readDepth(depth []frame.Depth) error {
	n := s.res.Area()
	if depth == nil {
		// skip without reading so sequential channel reads stay aligned
		_, err := s.file.Seek(int64(n*depthSampleSize), io.SeekCurrent)
		return errors.Wrap(err, "skipping depth payload")
	}
	if len(depth) < n {
		return errors.Errorf("depth buffer holds %d samples, frame needs %d", len(depth), n)
	}
	buf := s.payload[:n*depthSampleSize]
	if _, err := io.ReadFull(s.file, buf); err != nil {
		s.logger.Debugw("end of file (garbage found)", "frame", s.pace.Frame(), "error", err)
		return errors.Wrap(source.ErrTruncatedFrame, err.Error())
	}
	for i := 0; i < n; i++ {
		depth[i] = frame.Depth(binary.LittleEndian.Uint16(buf[i*depthSampleSize:]))
	}
	return nil
}

func (s *Source) readColor(color []frame.RGB) error {
	n := s.res.Area()
	if color == nil {
		_, err := s.file.Seek(int64(n*colorSampleSize), io.SeekCurrent)
		return errors.Wrap(err, "skipping color payload")
	}
	if len(color) < n {
		return errors.Errorf("color buffer holds %d samples, frame needs %d", len(color), n)
	}
	buf := s.payload[:n*colorSampleSize]
	if _, err := io.ReadFull(s.file, buf); err != nil {
		s.logger.Debugw("end of file (garbage found)", "frame", s.pace.Frame(), "error", err)
		return errors.Wrap(source.ErrTruncatedFrame, err.Error())
	}
	for i := 0; i < n; i++ {
		color[i] = frame.RGB{R: buf[i*colorSampleSize], G: buf[i*colorSampleSize+1], B: buf[i*colorSampleSize+2]}
	}
	return nil
}

// NextDepthMeters reads the next depth frame and rescales it to meters.
func (s *Source) NextDepthMeters(depth []float32) error {
	if err := s.NextFrame(nil, s.depthMM); err != nil {
		return err
	}
	if len(depth) < s.res.Area() {
		return errors.Errorf("depth buffer holds %d samples, frame needs %d", len(depth), s.res.Area())
	}
	frame.DepthToMeters(depth, s.depthMM)
	return nil
}

// NextSynced reads the ground-truth pose for the next measurement, then the
// frame itself. The pose index advances even if the frame read then fails.
func (s *Source) NextSynced(color []frame.RGB, depth []frame.Depth, pose *mgl64.Mat4) error {
	if s.gt == nil {
		return source.ErrNoGroundTruth
	}
	p, err := s.gt.Next()
	if err != nil {
		return err
	}
	*pose = p
	return s.NextFrame(color, depth)
}

// Intrinsics returns the assumed container calibration.
func (s *Source) Intrinsics() frame.Intrinsics {
	return DefaultIntrinsics
}

// Resolution returns the container's fixed frame size.
func (s *Source) Resolution() frame.Resolution {
	return s.res
}

// Restart rewinds the container and, independently, any attached
// ground-truth stream, back to their pre-first-record state.
func (s *Source) Restart() error {
	s.pace.Reset()
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "rewinding container")
	}
	if s.gt != nil {
		return s.gt.Restart()
	}
	return nil
}

// IsOpen reports whether the container file is attached.
func (s *Source) IsOpen() bool { return s.open }

// IsActive reports whether frames can currently be delivered.
func (s *Source) IsActive() bool { return s.active }

// FrameIndex returns the current frame index, -1 before the first read.
func (s *Source) FrameIndex() int { return s.pace.Frame() }

// Type returns source.TypeRawContainer.
func (s *Source) Type() source.Type { return source.TypeRawContainer }

// Close releases the container and ground-truth handles.
func (s *Source) Close() error {
	if !s.open {
		return nil
	}
	s.open = false
	s.active = false
	return multierr.Combine(s.file.Close(), closeIfOpen(s.gt))
}

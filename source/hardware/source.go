package hardware

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/densevision/rgbdsource/frame"
	"github.com/densevision/rgbdsource/pacer"
	"github.com/densevision/rgbdsource/source"
)

func init() {
	for _, t := range []source.Type{source.TypeStructuredLight, source.TypeDepthCamera} {
		t := t
		source.Register(t, func(cfg source.Config, logger golog.Logger) (source.Source, error) {
			return NewSource(t, cfg, logger)
		})
	}
}

// Source adapts a live Device to the source contract. Reads are synchronous:
// each call blocks on the device until a frame is delivered, then applies
// pacing.
type Source struct {
	source.NoGroundTruth

	logger golog.Logger
	typ    source.Type
	dev    Device
	pace   *pacer.Pacer
	res    frame.Resolution
	k      frame.Intrinsics

	open   bool
	active bool

	depthMM []frame.Depth
}

// NewSource negotiates a backend for the given hardware type and opens its
// stream. An absent or failing backend is a construction failure; no
// half-opened device session survives it.
func NewSource(t source.Type, cfg source.Config, logger golog.Logger) (*Source, error) {
	factory, ok := lookupDriver(t)
	if !ok {
		return nil, errors.Errorf("no %s driver registered", t)
	}
	dev := factory(logger)
	res, k, err := dev.Open(DeviceConfig{Path: cfg.DataPath, FPS: cfg.FPS})
	if err != nil {
		closeDevice(logger, dev)
		return nil, errors.Wrapf(err, "opening %s device", t)
	}
	if !res.Valid() {
		closeDevice(logger, dev)
		return nil, errors.Errorf("%s device reported invalid resolution %s", t, res)
	}
	return &Source{
		logger:  logger,
		typ:     t,
		dev:     dev,
		pace:    pacer.New(cfg.FPS, cfg.BlockingRead),
		res:     res,
		k:       k,
		open:    true,
		active:  true,
		depthMM: frame.NewDepthBuffer(res),
	}, nil
}

func closeDevice(logger golog.Logger, dev Device) {
	if err := dev.Close(); err != nil {
		logger.Debugw("error closing device", "error", err)
	}
}

// NextFrame blocks until the device delivers a frame into the caller's
// buffers, then paces. A FatalError from the device terminates the process;
// anything else deactivates the source and surfaces as a plain failure.
func (s *Source) NextFrame(color []frame.RGB, depth []frame.Depth) error {
	if !s.open {
		return source.ErrNotOpen
	}
	if !s.active {
		return errors.Wrapf(source.ErrNotOpen, "%s device is inactive", s.typ)
	}
	if err := s.dev.WaitFrame(depth, color); err != nil {
		var fatal *FatalError
		if errors.As(err, &fatal) {
			s.logger.Fatalw("device wait failed", "type", s.typ.String(), "error", err)
		}
		s.active = false
		return errors.Wrapf(err, "%s device read", s.typ)
	}
	s.pace.Advance()
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

// Intrinsics returns the calibration the device reported at open.
func (s *Source) Intrinsics() frame.Intrinsics { return s.k }

// Resolution returns the stream's fixed frame size.
func (s *Source) Resolution() frame.Resolution { return s.res }

// Restart resets the frame index. A live stream cannot be rewound.
func (s *Source) Restart() error {
	s.pace.Reset()
	return nil
}

// IsOpen reports whether a device session is attached.
func (s *Source) IsOpen() bool { return s.open }

// IsActive reports whether the device is still delivering frames. An open
// source goes inactive when its device faults.
func (s *Source) IsActive() bool { return s.open && s.active }

// FrameIndex returns the current frame index, -1 before the first read.
func (s *Source) FrameIndex() int { return s.pace.Frame() }

// Type returns the hardware variant this source adapts.
func (s *Source) Type() source.Type { return s.typ }

// Close releases the device session.
func (s *Source) Close() error {
	if !s.open {
		return nil
	}
	s.open = false
	s.active = false
	return s.dev.Close()
}

// Package source defines the common contract every RGB-D frame source
// implements, whether it replays a recorded dataset from disk or adapts a
// live camera. Callers construct a source from a Config, poll IsOpen, and
// read frames until an error signals the end of the stream.
package source

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/densevision/rgbdsource/frame"
)

// Type tags the concrete variant behind a Source. The set is closed; it
// never changes after construction.
type Type uint8

const (
	// TypeRawContainer replays the binary multi-frame container format.
	TypeRawContainer Type = iota
	// TypeScene replays an ICL-NUIM synthetic scene directory.
	TypeScene
	// TypeStructuredLight adapts a live structured-light camera.
	TypeStructuredLight
	// TypeDepthCamera adapts a live stereo/ToF depth camera.
	TypeDepthCamera
)

func (t Type) String() string {
	switch t {
	case TypeRawContainer:
		return "raw-container"
	case TypeScene:
		return "scene"
	case TypeStructuredLight:
		return "structured-light"
	case TypeDepthCamera:
		return "depth-camera"
	}
	return "unknown"
}

// TypeFromString parses a variant tag name.
func TypeFromString(s string) (Type, error) {
	for _, t := range []Type{TypeRawContainer, TypeScene, TypeStructuredLight, TypeDepthCamera} {
		if s == t.String() {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown source type %q", s)
}

// A Source delivers RGB-D frames one at a time. Sources are synchronous and
// single-threaded: every read completes (or fails) before returning, and a
// single instance must not be shared across goroutines without external
// serialization.
type Source interface {
	// NextDepthMeters fills a caller-owned buffer with the next depth frame
	// in meters.
	NextDepthMeters(depth []float32) error

	// NextFrame is the primary read primitive. It fills the caller-owned
	// color and depth buffers with the next frame. Either buffer may be nil
	// to skip that channel; the frame index advances regardless.
	NextFrame(color []frame.RGB, depth []frame.Depth) error

	// NextSynced reads the next ground-truth pose and then the next frame,
	// succeeding only if both succeed. Sources without ground truth return
	// ErrNoGroundTruth.
	NextSynced(color []frame.RGB, depth []frame.Depth, pose *mgl64.Mat4) error

	// Intrinsics returns the pinhole parameters of the stream.
	Intrinsics() frame.Intrinsics

	// Resolution returns the fixed size of every frame this source fills.
	Resolution() frame.Resolution

	// Restart rewinds all internal cursors to the pre-first-frame state. It
	// is safe to call at any point, including before any read.
	Restart() error

	// IsOpen reports whether the backing file or device is validly attached.
	IsOpen() bool

	// IsActive reports whether the source can currently deliver frames.
	// Active implies open; an open source can go inactive when its device
	// disconnects.
	IsActive() bool

	// FrameIndex returns the current frame index, -1 before the first read.
	FrameIndex() int

	// Type returns the variant tag.
	Type() Type

	// Close releases the file handles or device session. The source is
	// not-open afterwards.
	Close() error
}

// NoGroundTruth is embedded by sources that have no pose stream attached.
type NoGroundTruth struct{}

// NextSynced always reports that ground truth is unsupported.
func (NoGroundTruth) NextSynced([]frame.RGB, []frame.Depth, *mgl64.Mat4) error {
	return ErrNoGroundTruth
}

package source

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Config carries the options a source is constructed from. It is a value
// record: copy it into the source at construction and never mutate it after.
type Config struct {
	// FPS is the target playback rate. 0 means unthrottled, frames are
	// delivered as fast as the backing store allows.
	FPS int

	// BlockingRead makes playback sleep so every frame is visited at the
	// configured rate instead of skipping to stay on schedule.
	BlockingRead bool

	// DataPath locates the dataset file, scene directory, or device URI.
	DataPath string

	// GroundTruthPath optionally locates the pose association file.
	GroundTruthPath string

	// Transform is left-multiplied into every ground-truth pose. The zero
	// matrix is promoted to identity.
	Transform mgl64.Mat4

	// DepthOnly selects the compact container variant that carries no color
	// payload. It is a fixed mode of the reader, never auto-detected.
	DepthOnly bool
}

// Validate checks the config before a source is constructed from it.
func (c *Config) Validate() error {
	if c.FPS < 0 {
		return errors.Errorf("fps must be non-negative, got %d", c.FPS)
	}
	if c.DataPath == "" {
		return errors.New("data path is required")
	}
	return nil
}

// PoseTransform returns the configured transform, with the zero value
// promoted to identity.
func (c *Config) PoseTransform() mgl64.Mat4 {
	if c.Transform == (mgl64.Mat4{}) {
		return mgl64.Ident4()
	}
	return c.Transform
}

package rawdepth

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/densevision/rgbdsource/frame"
)

// A Writer appends frame records to a container file, producing the exact
// byte layout the reader consumes. Used by dataset converters and tests.
type Writer struct {
	file      *os.File
	buf       *bufio.Writer
	res       frame.Resolution
	depthOnly bool
	frames    int
}

// NewWriter creates (or truncates) a container file for the given fixed
// resolution.
func NewWriter(path string, res frame.Resolution, depthOnly bool) (*Writer, error) {
	if !res.Valid() {
		return nil, errors.Errorf("invalid container resolution %s", res)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create container file")
	}
	return &Writer{
		file:      f,
		buf:       bufio.NewWriter(f),
		res:       res,
		depthOnly: depthOnly,
	}, nil
}

// WriteFrame appends one record. In the full variant color must hold a whole
// frame; in the depth-only variant it is ignored.
func (w *Writer) WriteFrame(depth []frame.Depth, color []frame.RGB) error {
	n := w.res.Area()
	if len(depth) < n {
		return errors.Errorf("depth buffer holds %d samples, frame needs %d", len(depth), n)
	}
	if !w.depthOnly && len(color) < n {
		return errors.Errorf("color buffer holds %d samples, frame needs %d", len(color), n)
	}

	var dims [dimPairSize]byte
	putDims(dims[:], w.res)
	if _, err := w.buf.Write(dims[:]); err != nil {
		return err
	}
	var sample [depthSampleSize]byte
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(sample[:], uint16(depth[i]))
		if _, err := w.buf.Write(sample[:]); err != nil {
			return err
		}
	}
	if w.depthOnly {
		w.frames++
		return nil
	}

	if _, err := w.buf.Write(dims[:]); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := w.buf.Write([]byte{color[i].R, color[i].G, color[i].B}); err != nil {
			return err
		}
	}
	w.frames++
	return nil
}

// Frames returns the number of records written so far.
func (w *Writer) Frames() int {
	return w.frames
}

// Close flushes and releases the file.
func (w *Writer) Close() error {
	return multierr.Combine(w.buf.Flush(), w.file.Close())
}

package rawdepth

import (
	"io"
	"os"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/densevision/rgbdsource/frame"
)

// Info describes a container file without replaying it.
type Info struct {
	Resolution frame.Resolution
	RecordSize int64
	Frames     int64
	// Trailing is the byte count past the last whole record, nonzero for a
	// truncated file.
	Trailing int64
}

// Stat reads the leading dimension pair and derives the frame count from the
// file size.
func Stat(path string, depthOnly bool) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, errors.Wrap(err, "cannot open container file")
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	var dims [dimPairSize]byte
	if _, err := io.ReadFull(f, dims[:]); err != nil {
		return Info{}, errors.Wrapf(err, "invalid container file %s", path)
	}
	res := parseDims(dims[:])
	if !res.Valid() {
		return Info{}, errors.Errorf("invalid container resolution %s in %s", res, path)
	}

	st, err := f.Stat()
	if err != nil {
		return Info{}, err
	}
	record := recordSize(res, depthOnly)
	return Info{
		Resolution: res,
		RecordSize: record,
		Frames:     st.Size() / record,
		Trailing:   st.Size() % record,
	}, nil
}

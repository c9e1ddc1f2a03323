// Package groundtruth reads pose association files: plain text, one camera
// pose per line, used to evaluate tracking accuracy against a recorded
// dataset. Pose records are indexed independently from depth frames.
package groundtruth

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/densevision/rgbdsource/source"
)

// StartPose is the pose index before the first read.
const StartPose = -1

// ErrBadRecord reports a malformed pose line: fewer than seven fields or an
// unparseable number. The read fails rather than skipping the line so the
// caller's pose/frame alignment stays interpretable.
var ErrBadRecord = errors.New("invalid ground truth record, expected: ... tx ty tz qx qy qz qw")

// fieldsPerRecord is the trailing field count every record must carry:
// translation x y z followed by quaternion x y z w.
const fieldsPerRecord = 7

// A Reader parses pose records one line at a time. Lines starting with '#'
// and blank lines are skipped; any extra leading fields on a record (a
// timestamp, a frame id) are ignored.
type Reader struct {
	file      *os.File
	scanner   *bufio.Scanner
	transform mgl64.Mat4
	poseNum   int
}

// Open eagerly opens the association file. The transform is left-multiplied
// into every pose read.
func Open(path string, transform mgl64.Mat4) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open ground truth association file")
	}
	return &Reader{
		file:      f,
		scanner:   bufio.NewScanner(f),
		transform: transform,
		poseNum:   StartPose,
	}, nil
}

// Next returns the next pose as a rigid 4x4 transform. It returns
// source.ErrEndOfStream when the file is exhausted and ErrBadRecord on a
// malformed line.
func (r *Reader) Next() (mgl64.Mat4, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < fieldsPerRecord {
			return mgl64.Mat4{}, errors.Wrapf(ErrBadRecord, "%d fields", len(fields))
		}
		pose, err := parseRecord(fields[len(fields)-fieldsPerRecord:])
		if err != nil {
			return mgl64.Mat4{}, err
		}
		r.poseNum++
		return r.transform.Mul4(pose), nil
	}
	if err := r.scanner.Err(); err != nil {
		return mgl64.Mat4{}, errors.Wrap(err, "reading ground truth")
	}
	return mgl64.Mat4{}, source.ErrEndOfStream
}

// parseRecord builds the pose matrix from the trailing seven fields of a
// record. The quaternion scalar is the last field.
func parseRecord(fields []string) (mgl64.Mat4, error) {
	vals := make([]float64, fieldsPerRecord)
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return mgl64.Mat4{}, errors.Wrapf(ErrBadRecord, "field %q", s)
		}
		vals[i] = v
	}
	tran := r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}
	quat := mgl64.Quat{W: vals[6], V: mgl64.Vec3{vals[3], vals[4], vals[5]}}

	pose := quat.Mat4()
	pose.SetCol(3, mgl64.Vec4{tran.X, tran.Y, tran.Z, 1})
	return pose, nil
}

// PoseIndex returns the index of the last pose read, StartPose before any.
func (r *Reader) PoseIndex() int {
	return r.poseNum
}

// Restart rewinds to the beginning of the file and resets the pose index.
func (r *Reader) Restart() error {
	if _, err := r.file.Seek(0, 0); err != nil {
		return errors.Wrap(err, "rewinding ground truth")
	}
	r.scanner = bufio.NewScanner(r.file)
	r.poseNum = StartPose
	return nil
}

// Close releases the file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

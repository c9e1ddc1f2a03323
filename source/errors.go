package source

import "github.com/pkg/errors"

var (
	// ErrEndOfStream reports a clean end of data: zero bytes were available
	// where the next record should begin.
	ErrEndOfStream = errors.New("end of stream")

	// ErrTruncatedFrame reports a record that started but could not be read
	// in full. The source remains usable for Restart.
	ErrTruncatedFrame = errors.New("truncated frame record")

	// ErrNoGroundTruth reports a synced read on a source with no pose stream.
	ErrNoGroundTruth = errors.New("source has no ground truth attached")

	// ErrNotOpen reports a read on a source whose backing file or device is
	// not attached.
	ErrNotOpen = errors.New("source is not open")
)

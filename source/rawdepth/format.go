// Package rawdepth reads and writes the binary multi-frame container format
// used for recorded RGB-D datasets.
//
// The file is a sequence of identically sized records, one per frame. Each
// record carries its own little-endian dimension pair followed by the depth
// payload in millimeters and, in the full variant, a second dimension pair
// and the RGB payload. Because every record has the same computed size, any
// frame is reachable with a single absolute seek.
package rawdepth

import (
	"encoding/binary"

	"github.com/densevision/rgbdsource/frame"
)

const (
	// dimPairSize is the byte size of a width/height pair (two uint32).
	dimPairSize = 8
	// depthSampleSize is the byte size of one depth sample.
	depthSampleSize = 2
	// colorSampleSize is the byte size of one RGB sample.
	colorSampleSize = 3
)

// recordSize returns the byte size of one frame record for the given
// resolution. The depth-only variant omits the color dimension pair and
// payload entirely.
func recordSize(res frame.Resolution, depthOnly bool) int64 {
	size := int64(dimPairSize + res.Area()*depthSampleSize)
	if !depthOnly {
		size += int64(dimPairSize + res.Area()*colorSampleSize)
	}
	return size
}

// putDims encodes a dimension pair into an 8-byte buffer.
func putDims(buf []byte, res frame.Resolution) {
	binary.LittleEndian.PutUint32(buf[0:], uint32(res.Width))
	binary.LittleEndian.PutUint32(buf[4:], uint32(res.Height))
}

// parseDims decodes a dimension pair from an 8-byte buffer.
func parseDims(buf []byte) frame.Resolution {
	return frame.Resolution{
		Width:  int(binary.LittleEndian.Uint32(buf[0:])),
		Height: int(binary.LittleEndian.Uint32(buf[4:])),
	}
}

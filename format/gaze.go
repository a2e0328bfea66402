package format

import (
	"encoding/binary"
	"fmt"
	"math"
)

// GazeValue is a single decoded gaze sample.
type GazeValue struct {
	X, Y      float32
	Timestamp float64 // seconds
}

func (GazeValue) isValue() {}

type gazeFormatterV4 struct{}

func newGazeFormatter(version WireFormatVersion) Formatter {
	switch version {
	case V4:
		return gazeFormatterV4{}
	default:
		// V3 gaze decoding is unimplemented upstream; treated as
		// unsupported rather than guessed at.
		return unsupportedFormatter{}
	}
}

func (gazeFormatterV4) Reset() {}

func (gazeFormatterV4) Decode(msg DataMessage) ([]Value, error) {
	if len(msg.Header) < 8 {
		return nil, fmt.Errorf("%w: gaze v4 header", ErrShortBuffer)
	}
	if len(msg.Body) < 8 {
		return nil, fmt.Errorf("%w: gaze v4 body", ErrShortBuffer)
	}
	timestampNS := binary.LittleEndian.Uint64(msg.Header[0:8])
	x := math.Float32frombits(binary.LittleEndian.Uint32(msg.Body[0:4]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(msg.Body[4:8]))
	return []Value{GazeValue{
		X:         x,
		Y:         y,
		Timestamp: float64(timestampNS) * 1e-9,
	}}, nil
}

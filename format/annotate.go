package format

import (
	"encoding/binary"
	"fmt"
	"math"
)

// AnnotateValue is a single decoded annotation tick. The annotate sensor
// predates full NDSI conformance; it is treated as a compatibility shim
// throughout this module.
type AnnotateValue struct {
	Key       uint8
	Timestamp float64 // seconds
}

func (AnnotateValue) isValue() {}

type annotateFormatter struct {
	version WireFormatVersion
}

func newAnnotateFormatter(version WireFormatVersion) Formatter {
	switch version {
	case V3, V4:
		return annotateFormatter{version: version}
	default:
		return unsupportedFormatter{}
	}
}

func (annotateFormatter) Reset() {}

func (f annotateFormatter) Decode(msg DataMessage) ([]Value, error) {
	switch f.version {
	case V3:
		if len(msg.Header) < 9 {
			return nil, fmt.Errorf("%w: annotate v3 header", ErrShortBuffer)
		}
		key := msg.Header[0]
		timestamp := math.Float64frombits(binary.LittleEndian.Uint64(msg.Header[1:9]))
		return []Value{AnnotateValue{Key: key, Timestamp: timestamp}}, nil
	case V4:
		if len(msg.Header) < 9 {
			return nil, fmt.Errorf("%w: annotate v4 header", ErrShortBuffer)
		}
		key := msg.Header[0]
		timestampNS := binary.LittleEndian.Uint64(msg.Header[1:9])
		return []Value{AnnotateValue{Key: key, Timestamp: float64(timestampNS) * 1e-9}}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

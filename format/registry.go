package format

import (
	"errors"

	"ndsi/codec"
)

// ErrUnsupportedFormat is returned by Decode on the sentinel formatter
// handed back from GetFormatter for a (kind, version) pair this registry
// does not implement.
var ErrUnsupportedFormat = errors.New("ndsi/format: unsupported (sensor kind, wire format) combination")

// SensorKind mirrors the sensor_type field of a SensorDescriptor. Only
// kinds with a concrete Formatter appear in GetFormatter's dispatch table;
// hardware and led sensors never reach GetFormatter.
type SensorKind string

const (
	KindHardware SensorKind = "hardware"
	KindVideo    SensorKind = "video"
	KindAnnotate SensorKind = "annotate"
	KindGaze     SensorKind = "gaze"
	KindIMU      SensorKind = "imu"
	KindEvent    SensorKind = "event"
	KindLED      SensorKind = "led"
)

// SupportedKinds lists every sensor_type string accepted at the
// descriptor boundary; anything else causes the descriptor to be dropped.
func SupportedKinds() []SensorKind {
	return []SensorKind{KindHardware, KindVideo, KindAnnotate, KindGaze, KindIMU, KindEvent, KindLED}
}

// KindFromString resolves a wire sensor_type string to a SensorKind, or
// ok == false if the string names no supported kind.
func KindFromString(s string) (kind SensorKind, ok bool) {
	for _, k := range SupportedKinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// DataMessage is the three-part record produced by a sensor's data
// socket: the sensor id the message was addressed to, the fixed-layout
// header, and the body.
type DataMessage struct {
	SensorID string
	Header   []byte
	Body     []byte
}

// Value is the marker interface implemented by every typed decode
// result (VideoValue, GazeValue, IMUValue, AnnotateValue, EventValue).
type Value interface {
	isValue()
}

// Formatter decodes DataMessages of one (sensor kind, wire format
// version) into zero or more typed Values. A Formatter may be stateful
// (the video formatter caches the most recent H.264 keyframe); callers
// that resubscribe a session should call Reset to discard that state.
type Formatter interface {
	Decode(msg DataMessage) ([]Value, error)
	Reset()
}

// unsupportedFormatter is the sentinel returned by GetFormatter for a
// (kind, version) pair with no concrete implementation. The type is
// unexported; callers detect it with IsUnsupported and can refuse
// subscription cleanly instead of probing Decode's error.
type unsupportedFormatter struct{}

func (unsupportedFormatter) Decode(DataMessage) ([]Value, error) { return nil, ErrUnsupportedFormat }
func (unsupportedFormatter) Reset()                              {}

// IsUnsupported reports whether f is the sentinel unsupported formatter.
func IsUnsupported(f Formatter) bool {
	_, ok := f.(unsupportedFormatter)
	return ok
}

// GetFormatter resolves a new Formatter instance for the given sensor
// kind and wire-format version. Each call returns a fresh instance so a
// session's formatter state (the video keyframe cache) is never shared
// across sessions; unsupported combinations yield the sentinel
// unsupportedFormatter, never a nil Formatter.
//
// factory is only consulted for KindVideo; a nil factory there downgrades
// the formatter to unsupported rather than panicking later on the first
// frame, since there is nothing a video formatter without a FrameFactory
// could ever decode.
func GetFormatter(kind SensorKind, version WireFormatVersion, factory codec.FrameFactory) Formatter {
	switch kind {
	case KindVideo:
		if factory == nil {
			return unsupportedFormatter{}
		}
		return newVideoFormatter(version, factory)
	case KindGaze:
		return newGazeFormatter(version)
	case KindIMU:
		return newIMUFormatter(version)
	case KindAnnotate:
		return newAnnotateFormatter(version)
	case KindEvent:
		return newEventFormatter(version)
	default:
		return unsupportedFormatter{}
	}
}

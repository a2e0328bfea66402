// Package codec defines the frame-codec contract this module consumes
// but never implements: JPEG/H.264 decoding is a named non-goal of the
// client library and lives entirely behind this interface.
package codec

// VideoFrameHeader is the version-normalized metadata the video
// formatter extracts from a data-plane header before handing the body to
// a FrameFactory. Timestamp is always in microseconds, regardless of
// which wire-format version produced it.
type VideoFrameHeader struct {
	FormatCode  uint32
	Width       uint32
	Height      uint32
	Sequence    uint32
	TimestampUS float64
	Reserved    uint32
}

// Frame is an opaque decoded video frame. The core never inspects its
// contents; it only ever caches, forwards, or drops one.
type Frame interface{}

// FrameFactory constructs decoded frames from raw codec bodies. A
// FrameFactory implementation (JPEG, H.264, or any other codec) is
// supplied by the application; this module ships none.
//
// A nil Frame with a nil error signals "no frame could be constructed
// from this body" (e.g. an H.264 delta frame with no prior keyframe) and
// is not itself an error: the video formatter treats it as "reuse the
// last good frame."
type FrameFactory interface {
	CreateJPEGFrame(body []byte, header VideoFrameHeader) (Frame, error)
	CreateH264Frame(body []byte, header VideoFrameHeader) (Frame, error)
}

package session

import (
	"time"

	"ndsi/codec"
	"ndsi/format"
	"ndsi/transport"
)

// VideoSession is a sensor session for the video kind. It adds
// GetNewestDataFrame, the one explicit blocking operation this module
// exposes.
type VideoSession struct{ *Session }

// NewVideoSession constructs a video session. factory decodes the raw
// MJPEG/H.264 payloads into caller-usable frames; a nil factory
// downgrades the session to the unsupported formatter, so FetchData and
// GetNewestDataFrame both fail with a wrapped format.ErrUnsupportedFormat
// once a data message is queued.
func NewVideoSession(cfg Config, dialer transport.Dialer, factory codec.FrameFactory) (*VideoSession, error) {
	cfg.Kind = format.KindVideo
	cfg.Dialer = dialer
	cfg.FrameFactory = factory
	formatter := format.GetFormatter(format.KindVideo, cfg.Version, factory)
	s, err := newSession(cfg, formatter)
	if err != nil {
		return nil, err
	}
	return &VideoSession{s}, nil
}

// GetNewestDataFrame polls the data socket until timeout elapses or a
// message arrives, then drains every currently-queued message and
// returns the last decoded video frame. It fails with ErrTimeout if
// nothing arrived in time, or ErrStreamEmpty if something arrived but
// decoded to no frame.
func (v *VideoSession) GetNewestDataFrame(timeout time.Duration) (format.VideoValue, error) {
	if v.data == nil {
		return format.VideoValue{}, ErrNotDataSubSupported
	}
	deadline := time.Now().Add(timeout)
	for !v.data.HasMessage() {
		if time.Now().After(deadline) {
			return format.VideoValue{}, ErrTimeout
		}
		time.Sleep(time.Millisecond)
	}

	values, err := v.FetchData()
	if err != nil {
		return format.VideoValue{}, err
	}
	if len(values) == 0 {
		return format.VideoValue{}, ErrStreamEmpty
	}
	last, ok := values[len(values)-1].(format.VideoValue)
	if !ok {
		return format.VideoValue{}, ErrStreamEmpty
	}
	return last, nil
}

package session

import (
	"ndsi/format"
	"ndsi/transport"
)

// AnnotateSession is a sensor session for the annotate kind, which
// subscribes to the empty prefix on its data socket rather than its own
// sensor_uuid (a protocol compatibility quirk carried from the original
// publisher behavior).
type AnnotateSession struct{ *Session }

// GazeSession is a sensor session for the gaze kind.
type GazeSession struct{ *Session }

// IMUSession is a sensor session for the imu kind.
type IMUSession struct{ *Session }

// EventSession is a sensor session for the event kind.
type EventSession struct{ *Session }

// NewAnnotateSession constructs an annotate session. cfg.Kind is forced
// to format.KindAnnotate regardless of the caller's value, since the
// empty-prefix subscription behavior is tied to the kind, not to caller
// intent.
func NewAnnotateSession(cfg Config, dialer transport.Dialer) (*AnnotateSession, error) {
	cfg.Kind = format.KindAnnotate
	cfg.Dialer = dialer
	formatter := format.GetFormatter(format.KindAnnotate, cfg.Version, nil)
	s, err := newSession(cfg, formatter)
	if err != nil {
		return nil, err
	}
	return &AnnotateSession{s}, nil
}

// NewGazeSession constructs a gaze session.
func NewGazeSession(cfg Config, dialer transport.Dialer) (*GazeSession, error) {
	cfg.Kind = format.KindGaze
	cfg.Dialer = dialer
	formatter := format.GetFormatter(format.KindGaze, cfg.Version, nil)
	s, err := newSession(cfg, formatter)
	if err != nil {
		return nil, err
	}
	return &GazeSession{s}, nil
}

// NewIMUSession constructs an imu session.
func NewIMUSession(cfg Config, dialer transport.Dialer) (*IMUSession, error) {
	cfg.Kind = format.KindIMU
	cfg.Dialer = dialer
	formatter := format.GetFormatter(format.KindIMU, cfg.Version, nil)
	s, err := newSession(cfg, formatter)
	if err != nil {
		return nil, err
	}
	return &IMUSession{s}, nil
}

// NewEventSession constructs an event session.
func NewEventSession(cfg Config, dialer transport.Dialer) (*EventSession, error) {
	cfg.Kind = format.KindEvent
	cfg.Dialer = dialer
	formatter := format.GetFormatter(format.KindEvent, cfg.Version, nil)
	s, err := newSession(cfg, formatter)
	if err != nil {
		return nil, err
	}
	return &EventSession{s}, nil
}

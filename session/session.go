// Package session implements the sensor session: the three directional
// sockets (notification subscription, command push, optional data
// subscription), the control-state cache, and the notification callback
// chain described for a live binding to one remote sensor.
package session

import (
	"encoding/json"
	"fmt"
	"log"

	"ndsi/codec"
	"ndsi/format"
	"ndsi/transport"
)

// Notification is one parsed control-plane message delivered on a
// session's notify socket.
type Notification struct {
	Subject string
	Fields  map[string]json.RawMessage
}

// Callback observes every notification a session processes, in
// registration order.
type Callback func(s *Session, n Notification)

// Config describes everything needed to construct a session against one
// sensor descriptor.
type Config struct {
	SensorUUID     string
	SensorName     string
	Kind           format.SensorKind
	Version        format.WireFormatVersion
	NotifyEndpoint string
	CommandEndpoint string
	DataEndpoint   string // empty if the sensor has no data plane
	Dialer         transport.Dialer
	FrameFactory   codec.FrameFactory // consulted only for format.KindVideo
}

// Session is a live binding to one remote sensor. The zero value is not
// usable; construct with New or one of the typed constructors
// (NewVideoSession, NewAnnotateSession, NewGazeSession, NewIMUSession,
// NewEventSession).
type Session struct {
	uuid string
	name string
	kind format.SensorKind

	notify  transport.NotifySocket
	command transport.CommandSocket
	data    transport.DataSocket // nil when the sensor has no data plane

	controls  *ControlCache
	callbacks []Callback

	formatter format.Formatter // nil for hardware/led; set by typed constructors
}

// New constructs a session for a sensor kind with no data plane
// (hardware, led).
func New(cfg Config) (*Session, error) {
	return newSession(cfg, nil)
}

func newSession(cfg Config, formatter format.Formatter) (*Session, error) {
	notify, err := cfg.Dialer.DialNotify(cfg.NotifyEndpoint, cfg.SensorUUID)
	if err != nil {
		return nil, fmt.Errorf("session: connect notify socket: %w", err)
	}
	command, err := cfg.Dialer.DialCommand(cfg.CommandEndpoint)
	if err != nil {
		notify.Close()
		return nil, fmt.Errorf("session: connect command socket: %w", err)
	}

	var data transport.DataSocket
	if cfg.DataEndpoint != "" {
		prefix := cfg.SensorUUID
		if cfg.Kind == format.KindAnnotate {
			prefix = ""
		}
		data, err = cfg.Dialer.DialData(cfg.DataEndpoint, prefix, 3)
		if err != nil {
			notify.Close()
			command.Close()
			return nil, fmt.Errorf("session: connect data socket: %w", err)
		}
	}

	s := &Session{
		uuid:      cfg.SensorUUID,
		name:      cfg.SensorName,
		kind:      cfg.Kind,
		notify:    notify,
		command:   command,
		data:      data,
		controls:  newControlCache(),
		formatter: formatter,
	}
	if err := s.RefreshControls(); err != nil {
		s.Unlink()
		return nil, err
	}
	return s, nil
}

// UUID returns the sensor's uuid.
func (s *Session) UUID() string { return s.uuid }

// Name returns the sensor's advertised name.
func (s *Session) Name() string { return s.name }

// Kind returns the sensor's type.
func (s *Session) Kind() format.SensorKind { return s.kind }

// Controls returns the session's read-only control cache.
func (s *Session) Controls() *ControlCache { return s.controls }

// AddCallback registers a notification callback; callbacks fire in
// registration order, after the session's built-in cache-reconciliation
// handling.
func (s *Session) AddCallback(cb Callback) {
	s.callbacks = append(s.callbacks, cb)
}

// HasNotifications is a non-blocking predicate on the notify socket.
func (s *Session) HasNotifications() bool {
	return s.notify.HasMessage()
}

// HandleNotification reads one pending notification, applies the
// built-in cache update/remove handling, and fans the parsed
// notification out to every registered callback in order. Malformed
// messages are logged and dropped without error; call only after a
// truthy HasNotifications().
func (s *Session) HandleNotification() error {
	if !s.notify.HasMessage() {
		return ErrNoNotification
	}
	frames, err := s.notify.Recv()
	if err != nil {
		return fmt.Errorf("session: recv notification: %w", err)
	}
	if len(frames) != 2 {
		log.Printf("[Session] %s: dropping malformed notification (%d frames)", s.uuid, len(frames))
		return nil
	}
	if string(frames[0]) != s.uuid {
		log.Printf("[Session] %s: dropping notification addressed to %q", s.uuid, frames[0])
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(frames[1], &fields); err != nil {
		log.Printf("[Session] %s: dropping non-JSON notification: %v", s.uuid, err)
		return nil
	}
	var subject string
	if raw, ok := fields["subject"]; ok {
		json.Unmarshal(raw, &subject)
	}
	if subject == "" {
		log.Printf("[Session] %s: dropping notification with no subject", s.uuid)
		return nil
	}

	notification := Notification{Subject: subject, Fields: fields}
	s.applyBuiltinCallback(notification)

	for _, cb := range s.callbacks {
		s.invokeCallback(cb, notification)
	}
	return nil
}

func (s *Session) invokeCallback(cb Callback, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Session] %s: notification callback panicked: %v", s.uuid, r)
		}
	}()
	cb(s, n)
}

func (s *Session) applyBuiltinCallback(n Notification) {
	switch n.Subject {
	case "update":
		controlID, changes, ok := notificationUpdateFields(n)
		if ok {
			s.controls.update(controlID, changes)
		}
	case "remove":
		if raw, ok := n.Fields["control_id"]; ok {
			var controlID string
			if json.Unmarshal(raw, &controlID) == nil {
				s.controls.remove(controlID)
			}
		}
	}
}

func notificationUpdateFields(n Notification) (controlID string, changes map[string]json.RawMessage, ok bool) {
	raw, present := n.Fields["control_id"]
	if !present {
		return "", nil, false
	}
	if json.Unmarshal(raw, &controlID) != nil {
		return "", nil, false
	}
	changesRaw, present := n.Fields["changes"]
	if !present {
		return controlID, nil, true
	}
	json.Unmarshal(changesRaw, &changes)
	return controlID, changes, true
}

// RefreshControls asks the publisher to re-send every control's current state.
func (s *Session) RefreshControls() error {
	return s.sendCommand(map[string]interface{}{"action": "refresh_controls"})
}

// SetControlValue coerces value to the control's known dtype (when the
// cache already knows it) and pushes a set_control_value command. The
// cache itself is not mutated here; mutation is deferred to the
// publisher's echoed update notification.
func (s *Session) SetControlValue(controlID string, value interface{}) error {
	if ctrl, ok := s.controls.Get(controlID); ok {
		value = coerceToDType(ctrl.DType, value)
	}
	return s.sendCommand(map[string]interface{}{
		"action":     "set_control_value",
		"control_id": controlID,
		"value":      value,
	})
}

// ResetControlValue resets one control to its advertised default. Logs
// and returns nil if the control is unknown or has no default, matching
// the non-fatal error handling of the rest of the notification path.
func (s *Session) ResetControlValue(controlID string) error {
	ctrl, ok := s.controls.Get(controlID)
	if !ok {
		log.Printf("[Session] %s: reset_control_value: unknown control %q", s.uuid, controlID)
		return nil
	}
	if len(ctrl.Def) == 0 {
		log.Printf("[Session] %s: reset_control_value: control %q has no default", s.uuid, controlID)
		return nil
	}
	var def interface{}
	if err := json.Unmarshal(ctrl.Def, &def); err != nil {
		log.Printf("[Session] %s: reset_control_value: control %q default is malformed: %v", s.uuid, controlID, err)
		return nil
	}
	return s.SetControlValue(controlID, def)
}

// ResetAllControlValues resets every currently-known control to its
// default, iterating a snapshot of keys taken before any reset begins.
func (s *Session) ResetAllControlValues() error {
	for _, id := range s.controls.Keys() {
		if err := s.ResetControlValue(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) sendCommand(payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("session: encode command: %w", err)
	}
	return s.command.Send([][]byte{[]byte(s.uuid), body})
}

// HasData is a non-blocking predicate on the data socket.
func (s *Session) HasData() (bool, error) {
	if s.data == nil {
		return false, ErrNotDataSubSupported
	}
	return s.data.HasMessage(), nil
}

// FetchData receives and decodes every currently-queued data message.
// It is only meaningful on the five data-bearing session kinds. Session
// values constructed via New (hardware, led) fail with
// ErrNotDataSubSupported when they have no data endpoint, and with
// format.ErrUnsupportedFormat when they have one, since they carry no
// formatter.
func (s *Session) FetchData() ([]format.Value, error) {
	if s.data == nil {
		return nil, ErrNotDataSubSupported
	}
	if s.formatter == nil {
		return nil, format.ErrUnsupportedFormat
	}

	var values []format.Value
	for s.data.HasMessage() {
		frames, err := s.data.Recv()
		if err != nil {
			return values, fmt.Errorf("session: recv data: %w", err)
		}
		if len(frames) != 3 {
			log.Printf("[Session] %s: dropping malformed data message (%d frames)", s.uuid, len(frames))
			continue
		}
		msg := format.DataMessage{SensorID: string(frames[0]), Header: frames[1], Body: frames[2]}
		decoded, err := s.formatter.Decode(msg)
		if err != nil {
			return values, fmt.Errorf("session: decode data: %w", err)
		}
		values = append(values, decoded...)
	}
	return values, nil
}

// Unlink unsubscribes and closes every owned socket. It is safe to call
// more than once.
func (s *Session) Unlink() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(s.notify.Close())
	record(s.command.Close())
	if s.data != nil {
		record(s.data.Close())
	}
	return firstErr
}

func coerceToDType(dtype string, value interface{}) interface{} {
	switch dtype {
	case "bool":
		if v, ok := value.(bool); ok {
			return v
		}
	case "string", "strmapping":
		if v, ok := value.(string); ok {
			return v
		}
		return fmt.Sprintf("%v", value)
	case "integer", "intmapping":
		switch v := value.(type) {
		case int:
			return v
		case float64:
			return int(v)
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return int(n)
			}
		}
	case "float":
		switch v := value.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return value
}

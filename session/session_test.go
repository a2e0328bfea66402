package session_test

import (
	"encoding/json"
	"testing"

	"ndsi/format"
	"ndsi/session"
	"ndsi/transport"
)

func newTestSession(t *testing.T, kind format.SensorKind, dataEndpoint string) (*session.Session, *transport.FakeBroker) {
	t.Helper()
	broker := transport.NewFakeBroker()
	cfg := session.Config{
		SensorUUID:      "sensor-1",
		SensorName:      "Test Sensor",
		Kind:            kind,
		Version:         format.V4,
		NotifyEndpoint:  "fake://notify",
		CommandEndpoint: "fake://command",
		DataEndpoint:    dataEndpoint,
		Dialer:          broker,
	}
	s, err := session.New(cfg)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return s, broker
}

func TestNewSessionSendsRefreshControls(t *testing.T) {
	_, broker := newTestSession(t, format.KindHardware, "")

	cmds := broker.Commands()
	if len(cmds) != 1 {
		t.Fatalf("got %d commands after construction, want 1 (refresh_controls)", len(cmds))
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(cmds[0][1], &payload); err != nil {
		t.Fatalf("unmarshal command payload: %v", err)
	}
	if payload["action"] != "refresh_controls" {
		t.Errorf("action = %v, want refresh_controls", payload["action"])
	}
}

func TestHandleNotificationUpdatesControlCache(t *testing.T) {
	s, broker := newTestSession(t, format.KindHardware, "")

	body, _ := json.Marshal(map[string]interface{}{
		"subject":    "update",
		"control_id": "brightness",
		"changes": map[string]interface{}{
			"value": 50,
			"dtype": "integer",
			"def":   10,
		},
	})
	broker.PublishNotify([][]byte{[]byte("sensor-1"), body})

	if !s.HasNotifications() {
		t.Fatal("expected a pending notification")
	}
	if err := s.HandleNotification(); err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}

	ctrl, ok := s.Controls().Get("brightness")
	if !ok {
		t.Fatal("expected brightness control to be present after update")
	}
	if ctrl.DType != "integer" {
		t.Errorf("DType = %q, want integer", ctrl.DType)
	}
}

func TestHandleNotificationRemove(t *testing.T) {
	s, broker := newTestSession(t, format.KindHardware, "")

	upd, _ := json.Marshal(map[string]interface{}{
		"subject": "update", "control_id": "gain", "changes": map[string]interface{}{"value": 1},
	})
	broker.PublishNotify([][]byte{[]byte("sensor-1"), upd})
	s.HandleNotification()

	if _, ok := s.Controls().Get("gain"); !ok {
		t.Fatal("expected gain control after update")
	}

	rem, _ := json.Marshal(map[string]interface{}{"subject": "remove", "control_id": "gain"})
	broker.PublishNotify([][]byte{[]byte("sensor-1"), rem})
	s.HandleNotification()

	if _, ok := s.Controls().Get("gain"); ok {
		t.Fatal("expected gain control to be removed")
	}
}

func TestHandleNotificationMalformedIsSilentlyDropped(t *testing.T) {
	s, broker := newTestSession(t, format.KindHardware, "")
	broker.PublishNotify([][]byte{[]byte("sensor-1"), []byte("not json")})

	if !s.HasNotifications() {
		t.Fatal("expected the malformed message to still be queued")
	}
	if err := s.HandleNotification(); err != nil {
		t.Fatalf("HandleNotification should not error on malformed input: %v", err)
	}
}

func TestHandleNotificationWrongFrameCountDropped(t *testing.T) {
	s, broker := newTestSession(t, format.KindHardware, "")
	broker.PublishNotify([][]byte{[]byte("sensor-1"), []byte("{}"), []byte("extra")})

	if err := s.HandleNotification(); err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}
}

func TestCallbackChainFiresAfterBuiltinAndSurvivesPanic(t *testing.T) {
	s, broker := newTestSession(t, format.KindHardware, "")

	var order []string
	var cachedBeforeCallback bool
	s.AddCallback(func(sess *session.Session, n session.Notification) {
		panic("boom")
	})
	s.AddCallback(func(sess *session.Session, n session.Notification) {
		order = append(order, n.Subject)
		_, cachedBeforeCallback = sess.Controls().Get("x")
	})

	body, _ := json.Marshal(map[string]interface{}{
		"subject": "update", "control_id": "x", "changes": map[string]interface{}{"value": 1},
	})
	broker.PublishNotify([][]byte{[]byte("sensor-1"), body})

	if err := s.HandleNotification(); err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}
	if len(order) != 1 || order[0] != "update" {
		t.Fatalf("second callback should still run after the first panics, got %v", order)
	}
	if !cachedBeforeCallback {
		t.Error("built-in cache update should have run before the user callbacks")
	}
}

func TestSetControlValueCoercesKnownDType(t *testing.T) {
	s, broker := newTestSession(t, format.KindHardware, "")

	body, _ := json.Marshal(map[string]interface{}{
		"subject": "update", "control_id": "exposure",
		"changes": map[string]interface{}{"dtype": "integer"},
	})
	broker.PublishNotify([][]byte{[]byte("sensor-1"), body})
	s.HandleNotification()

	if err := s.SetControlValue("exposure", 3.0); err != nil {
		t.Fatalf("SetControlValue: %v", err)
	}

	cmds := broker.Commands()
	last := cmds[len(cmds)-1]
	var payload map[string]interface{}
	json.Unmarshal(last[1], &payload)
	if v, ok := payload["value"].(float64); !ok || v != 3 {
		t.Errorf("value = %v, want coerced int 3", payload["value"])
	}

	// The cache must not be mutated directly by SetControlValue.
	ctrl, _ := s.Controls().Get("exposure")
	if len(ctrl.Value) != 0 {
		t.Error("SetControlValue must not mutate the cache directly")
	}
}

func TestResetAllControlValuesUsesDefaults(t *testing.T) {
	s, broker := newTestSession(t, format.KindHardware, "")

	body, _ := json.Marshal(map[string]interface{}{
		"subject": "update", "control_id": "a",
		"changes": map[string]interface{}{"def": 7},
	})
	broker.PublishNotify([][]byte{[]byte("sensor-1"), body})
	s.HandleNotification()

	if err := s.ResetAllControlValues(); err != nil {
		t.Fatalf("ResetAllControlValues: %v", err)
	}

	cmds := broker.Commands()
	last := cmds[len(cmds)-1]
	var payload map[string]interface{}
	json.Unmarshal(last[1], &payload)
	if payload["action"] != "set_control_value" || payload["control_id"] != "a" {
		t.Errorf("got %v, want a set_control_value command for control a", payload)
	}
}

func TestHasDataWithoutDataSocket(t *testing.T) {
	s, _ := newTestSession(t, format.KindHardware, "")
	if _, err := s.HasData(); err != session.ErrNotDataSubSupported {
		t.Fatalf("HasData err = %v, want ErrNotDataSubSupported", err)
	}
	if _, err := s.FetchData(); err != session.ErrNotDataSubSupported {
		t.Fatalf("FetchData err = %v, want ErrNotDataSubSupported", err)
	}
}

func TestUnlinkClosesSockets(t *testing.T) {
	s, broker := newTestSession(t, format.KindHardware, "fake://data")
	_ = broker
	if err := s.Unlink(); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if err := s.RefreshControls(); err != transport.ErrClosed {
		t.Fatalf("RefreshControls after Unlink: err = %v, want ErrClosed", err)
	}
	broker.PublishData([][]byte{[]byte("sensor-1"), nil, nil})
	if has, _ := s.HasData(); has {
		t.Fatal("closed data socket should not queue new messages")
	}
	// Unlink is idempotent.
	if err := s.Unlink(); err != nil {
		t.Fatalf("second Unlink: %v", err)
	}
}

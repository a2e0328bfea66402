package session

import (
	"encoding/json"
	"sync"
)

// MapEntry is one entry of a mapping-typed control's ordered value list.
type MapEntry struct {
	Value   json.RawMessage `json:"value"`
	Caption string          `json:"caption"`
}

// Control is a single control record as published by a sensor. Fields a
// given control doesn't carry stay at their zero value.
type Control struct {
	ControlID string          `json:"control_id"`
	Value     json.RawMessage `json:"value,omitempty"`
	DType     string          `json:"dtype,omitempty"`
	Min       json.RawMessage `json:"min,omitempty"`
	Max       json.RawMessage `json:"max,omitempty"`
	Res       json.RawMessage `json:"res,omitempty"`
	Def       json.RawMessage `json:"def,omitempty"`
	Caption   string          `json:"caption,omitempty"`
	ReadOnly  bool            `json:"readonly,omitempty"`
	Map       []MapEntry      `json:"map,omitempty"`
}

// ControlCache holds one session's known controls, keyed by control_id.
// It is read-only to consumers by construction, not by a runtime check:
// the backing map is unexported so there is no assignable field to
// write through, the only mutation paths (update, remove) are
// unexported and driven exclusively by the session's handling of the
// publisher's own notifications, and Get returns a deep copy so a
// caller mutating the returned Control cannot reach the cache's
// storage either.
type ControlCache struct {
	mu       sync.RWMutex
	controls map[string]Control
}

func newControlCache() *ControlCache {
	return &ControlCache{controls: make(map[string]Control)}
}

// Get returns a deep copy of the control for id and whether it was
// present. The copy is independent of the cache's stored state: a
// caller mutating the returned Control's byte slices or Map cannot
// corrupt what ControlCache holds.
func (c *ControlCache) Get(id string) (Control, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctrl, ok := c.controls[id]
	if !ok {
		return Control{}, false
	}
	return cloneControl(ctrl), true
}

// cloneControl deep-copies the reference-typed fields of a Control so
// the returned value shares no backing array with the cache's copy.
func cloneControl(ctrl Control) Control {
	ctrl.Value = append(json.RawMessage(nil), ctrl.Value...)
	ctrl.Min = append(json.RawMessage(nil), ctrl.Min...)
	ctrl.Max = append(json.RawMessage(nil), ctrl.Max...)
	ctrl.Res = append(json.RawMessage(nil), ctrl.Res...)
	ctrl.Def = append(json.RawMessage(nil), ctrl.Def...)
	if ctrl.Map != nil {
		ctrl.Map = append([]MapEntry(nil), ctrl.Map...)
		for i, entry := range ctrl.Map {
			entry.Value = append(json.RawMessage(nil), entry.Value...)
			ctrl.Map[i] = entry
		}
	}
	return ctrl
}

// Keys returns a snapshot of the currently-known control ids. Callers
// that iterate and mutate (e.g. ResetAllControlValues) must snapshot
// first, since mutation happens asynchronously via notifications.
func (c *ControlCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.controls))
	for k := range c.controls {
		keys = append(keys, k)
	}
	return keys
}

// update merges changes into the existing control (or creates one) for
// controlID. It is invoked only by the session's built-in notification
// callback; there is no exported mutator, which is what makes the cache
// read-only to consumers.
func (c *ControlCache) update(controlID string, changes map[string]json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctrl := c.controls[controlID]
	ctrl.ControlID = controlID
	if v, ok := changes["value"]; ok {
		ctrl.Value = v
	}
	if v, ok := changes["dtype"]; ok {
		json.Unmarshal(v, &ctrl.DType)
	}
	if v, ok := changes["min"]; ok {
		ctrl.Min = v
	}
	if v, ok := changes["max"]; ok {
		ctrl.Max = v
	}
	if v, ok := changes["res"]; ok {
		ctrl.Res = v
	}
	if v, ok := changes["def"]; ok {
		ctrl.Def = v
	}
	if v, ok := changes["caption"]; ok {
		json.Unmarshal(v, &ctrl.Caption)
	}
	if v, ok := changes["readonly"]; ok {
		json.Unmarshal(v, &ctrl.ReadOnly)
	}
	if v, ok := changes["map"]; ok {
		var entries []MapEntry
		if json.Unmarshal(v, &entries) == nil {
			ctrl.Map = entries
		}
	}
	c.controls[controlID] = ctrl
}

// remove deletes a control entry if present.
func (c *ControlCache) remove(controlID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.controls, controlID)
}

package node

import "sync"

// table is the host/sensor reconciliation table: hosts_by_uuid ->
// {sensor_uuid -> Descriptor}. Adapted from the mutex-guarded
// register/remove/list registry idiom this codebase uses for its other
// in-memory lookups.
type table struct {
	mu    sync.RWMutex
	hosts map[string]*hostEntry
}

type hostEntry struct {
	hostName string
	sensors  map[string]Descriptor
}

func newTable() *table {
	return &table{hosts: make(map[string]*hostEntry)}
}

// attach records a sensor under its host. It reports false (and makes no
// change) if the sensor_uuid is already known anywhere in the table —
// attach is idempotent per spec.
func (t *table) attach(d Descriptor) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, h := range t.hosts {
		if _, exists := h.sensors[d.SensorUUID]; exists {
			return false
		}
	}

	h, ok := t.hosts[d.HostUUID]
	if !ok {
		h = &hostEntry{hostName: d.HostName, sensors: make(map[string]Descriptor)}
		t.hosts[d.HostUUID] = h
	}
	h.sensors[d.SensorUUID] = d
	return true
}

// detach removes a sensor by uuid, returning its descriptor. It also
// removes the owning host entry once it has no sensors left.
func (t *table) detach(sensorUUID string) (Descriptor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detachLocked(sensorUUID)
}

func (t *table) detachLocked(sensorUUID string) (Descriptor, bool) {
	for hostUUID, h := range t.hosts {
		if d, ok := h.sensors[sensorUUID]; ok {
			delete(h.sensors, sensorUUID)
			if len(h.sensors) == 0 {
				delete(t.hosts, hostUUID)
			}
			return d, true
		}
	}
	return Descriptor{}, false
}

// get looks up a sensor by uuid without removing it.
func (t *table) get(sensorUUID string) (Descriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, h := range t.hosts {
		if d, ok := h.sensors[sensorUUID]; ok {
			return d, true
		}
	}
	return Descriptor{}, false
}

// removeHost detaches every sensor owned by hostUUID and returns their
// descriptors, in the order they happen to be stored.
func (t *table) removeHost(hostUUID string) []Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.hosts[hostUUID]
	if !ok {
		return nil
	}
	descriptors := make([]Descriptor, 0, len(h.sensors))
	for _, d := range h.sensors {
		descriptors = append(descriptors, d)
	}
	delete(t.hosts, hostUUID)
	return descriptors
}

// sensors returns every currently-known descriptor across all hosts.
func (t *table) sensors() []Descriptor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Descriptor
	for _, h := range t.hosts {
		for _, d := range h.sensors {
			out = append(out, d)
		}
	}
	return out
}

// hostUUIDs returns every currently-known host uuid.
func (t *table) hostUUIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.hosts))
	for id := range t.hosts {
		out = append(out, id)
	}
	return out
}

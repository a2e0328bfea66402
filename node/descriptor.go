// Package node implements one network node per wire-format version: peer
// identity and lifecycle against a discovery substrate, a host/sensor
// reconciliation table, the event loop that turns substrate events into
// attach/detach notifications, and the sensor factory that constructs
// sessions from reconciled descriptors.
package node

import "ndsi/format"

// Descriptor records everything needed to construct a session for one
// remote sensor, plus the host it was attached from.
type Descriptor struct {
	SensorUUID string
	SensorName string
	Kind       format.SensorKind

	NotifyEndpoint  string
	CommandEndpoint string
	DataEndpoint    string // empty when the sensor has no data plane

	HostUUID string
	HostName string
}

package node

import (
	"encoding/json"
	"fmt"
	"log"

	"ndsi/codec"
	"ndsi/discovery"
	"ndsi/format"
	"ndsi/session"
	"ndsi/transport"
)

// Event is one reconciled attach/detach occurrence, fanned out to every
// registered callback after the node's built-in table reconciliation has
// already run.
type Event struct {
	Subject    string
	HostUUID   string
	HostName   string
	SensorUUID string
	Descriptor Descriptor // on attach the new descriptor; on detach the one remembered in the table
}

// EventCallback observes every event a node processes, in registration order.
type EventCallback func(n *Node, e Event)

// Node is one peer identity on the discovery substrate, scoped to a
// single wire-format version.
type Node struct {
	name    string
	version format.WireFormatVersion
	headers map[string]string

	peerFactory discovery.Factory
	peer        discovery.Peer

	table     *table
	callbacks []EventCallback
	running   bool
}

// New constructs an unstarted node for the given wire-format version.
func New(name string, version format.WireFormatVersion, peerFactory discovery.Factory) *Node {
	return &Node{
		name:        name,
		version:     version,
		headers:     make(map[string]string),
		peerFactory: peerFactory,
		table:       newTable(),
	}
}

// Version reports the wire-format version this node serves.
func (n *Node) Version() format.WireFormatVersion { return n.version }

// SetHeader sets a static header applied to the peer identity on Start.
func (n *Node) SetHeader(key, value string) {
	n.headers[key] = value
}

// AddCallback registers an event callback; callbacks fire in
// registration order, after the node's built-in table reconciliation.
func (n *Node) AddCallback(cb EventCallback) {
	n.callbacks = append(n.callbacks, cb)
}

// Running reports whether the node has been started and not yet stopped.
func (n *Node) Running() bool { return n.running }

// Start creates the peer identity, applies static headers, and joins
// this node's wire-format group.
func (n *Node) Start() error {
	peer, err := n.peerFactory(n.name)
	if err != nil {
		return fmt.Errorf("node: create peer: %w", err)
	}
	for k, v := range n.headers {
		peer.SetHeader(k, v)
	}
	if err := peer.Start(); err != nil {
		return fmt.Errorf("node: start peer: %w", err)
	}
	if err := peer.Join(format.GroupName(n.version)); err != nil {
		peer.Stop()
		return fmt.Errorf("node: join group: %w", err)
	}
	n.peer = peer
	n.running = true
	return nil
}

// Stop leaves the group and stops the peer identity.
func (n *Node) Stop() error {
	if n.peer == nil {
		return nil
	}
	n.peer.Leave(format.GroupName(n.version))
	err := n.peer.Stop()
	n.running = false
	return err
}

// Rejoin synthesizes a detach event for every currently-known sensor so
// consumers tear down their sessions, then leaves and rejoins the group.
// No state is preserved across a rejoin.
func (n *Node) Rejoin() error {
	for _, hostUUID := range n.table.hostUUIDs() {
		n.exitHost(hostUUID)
	}
	if n.peer == nil {
		return nil
	}
	group := format.GroupName(n.version)
	n.peer.Leave(group)
	return n.peer.Join(group)
}

// Whisper direct-messages a peer. On V3 this is a documented no-op kept
// for compatibility with publishers that never implemented it; on V4 it
// forwards to the discovery substrate.
func (n *Node) Whisper(peerUUID string, payload []byte) error {
	if n.version == format.V3 {
		return nil
	}
	if n.peer == nil {
		return nil
	}
	return n.peer.Whisper(peerUUID, payload)
}

// HasEvents is a non-blocking predicate on the underlying peer's event source.
func (n *Node) HasEvents() bool {
	return n.peer != nil && n.peer.HasEvent()
}

// HandleEvent processes one pending substrate event. Call only after a
// truthy HasEvents().
func (n *Node) HandleEvent() error {
	ev, ok := n.peer.PollEvent()
	if !ok {
		return nil
	}

	switch ev.Type {
	case discovery.EventShout, discovery.EventWhisper:
		n.handlePayloadEvent(ev)
	case discovery.EventJoin:
		n.handleJoin(ev)
	case discovery.EventExit:
		n.exitHost(ev.PeerUUID)
	default:
		log.Printf("[Node] dropping unhandled substrate event type %q", ev.Type)
	}
	return nil
}

func (n *Node) handleJoin(ev discovery.Event) {
	if ev.Group != "" && ev.Group != format.GroupName(n.version) {
		log.Printf("[Node] JOIN from %s names an unexpected group %q", ev.PeerUUID, ev.Group)
	}
}

func (n *Node) handlePayloadEvent(ev discovery.Event) {
	if len(ev.Msg) == 0 {
		log.Printf("[Node] dropping %s with no payload frame", ev.Type)
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(ev.Msg[0], &fields); err != nil {
		log.Printf("[Node] dropping non-JSON %s from %s: %v", ev.Type, ev.PeerUUID, err)
		return
	}
	var subject, sensorUUID string
	unmarshalField(fields, "subject", &subject)
	unmarshalField(fields, "sensor_uuid", &sensorUUID)
	if subject == "" || sensorUUID == "" {
		log.Printf("[Node] dropping %s from %s missing subject/sensor_uuid", ev.Type, ev.PeerUUID)
		return
	}

	switch subject {
	case "attach":
		n.handleAttach(ev, fields, sensorUUID)
	case "detach":
		n.handleDetach(ev, sensorUUID)
	default:
		log.Printf("[Node] dropping %s with unsupported subject %q", ev.Type, subject)
	}
}

func (n *Node) handleAttach(ev discovery.Event, fields map[string]json.RawMessage, sensorUUID string) {
	var sensorType, sensorName, notifyEndpoint, commandEndpoint, dataEndpoint string
	unmarshalField(fields, "sensor_type", &sensorType)
	unmarshalField(fields, "sensor_name", &sensorName)
	unmarshalField(fields, "notify_endpoint", &notifyEndpoint)
	unmarshalField(fields, "command_endpoint", &commandEndpoint)
	unmarshalField(fields, "data_endpoint", &dataEndpoint)

	kind, ok := format.KindFromString(sensorType)
	if !ok {
		log.Printf("[Node] dropping attach for %s: unsupported sensor_type %q", sensorUUID, sensorType)
		return
	}

	d := Descriptor{
		SensorUUID:      sensorUUID,
		SensorName:      sensorName,
		Kind:            kind,
		NotifyEndpoint:  notifyEndpoint,
		CommandEndpoint: commandEndpoint,
		DataEndpoint:    dataEndpoint,
		HostUUID:        ev.PeerUUID,
		HostName:        ev.PeerName,
	}

	if !n.table.attach(d) {
		return // already known: attach is idempotent
	}
	n.fanOut(Event{Subject: "attach", HostUUID: ev.PeerUUID, HostName: ev.PeerName, SensorUUID: sensorUUID, Descriptor: d})
}

func (n *Node) handleDetach(ev discovery.Event, sensorUUID string) {
	d, ok := n.table.detach(sensorUUID)
	if !ok {
		return // unknown sensor: drop
	}
	n.fanOut(Event{Subject: "detach", HostUUID: ev.PeerUUID, HostName: ev.PeerName, SensorUUID: sensorUUID, Descriptor: d})
}

// exitHost synthesizes a detach event for every sensor owned by
// hostUUID, in the nested host-then-sensor order the rejoin and EXIT
// paths both use.
func (n *Node) exitHost(hostUUID string) {
	for _, d := range n.table.removeHost(hostUUID) {
		n.fanOut(Event{Subject: "detach", HostUUID: d.HostUUID, HostName: d.HostName, SensorUUID: d.SensorUUID, Descriptor: d})
	}
}

func (n *Node) fanOut(e Event) {
	for _, cb := range n.callbacks {
		n.invokeCallback(cb, e)
	}
}

func (n *Node) invokeCallback(cb EventCallback, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Node] event callback panicked: %v", r)
		}
	}()
	cb(n, e)
}

func unmarshalField(fields map[string]json.RawMessage, key string, dst *string) {
	if raw, ok := fields[key]; ok {
		json.Unmarshal(raw, dst)
	}
}

// Sensor looks up sensorUUID in the reconciliation table and constructs
// a newly-dialed session.Handle of the matching kind. frameFactory is
// only consulted when the sensor is a video sensor.
func (n *Node) Sensor(sensorUUID string, dialer transport.Dialer, frameFactory codec.FrameFactory) (session.Handle, error) {
	d, ok := n.table.get(sensorUUID)
	if !ok {
		return nil, ErrUnknownSensor
	}

	cfg := session.Config{
		SensorUUID:      d.SensorUUID,
		SensorName:      d.SensorName,
		Kind:            d.Kind,
		Version:         n.version,
		NotifyEndpoint:  d.NotifyEndpoint,
		CommandEndpoint: d.CommandEndpoint,
		DataEndpoint:    d.DataEndpoint,
	}

	switch d.Kind {
	case format.KindVideo:
		return session.NewVideoSession(cfg, dialer, frameFactory)
	case format.KindAnnotate:
		return session.NewAnnotateSession(cfg, dialer)
	case format.KindGaze:
		return session.NewGazeSession(cfg, dialer)
	case format.KindIMU:
		return session.NewIMUSession(cfg, dialer)
	case format.KindEvent:
		return session.NewEventSession(cfg, dialer)
	case format.KindHardware, format.KindLED:
		cfg.Dialer = dialer
		return session.New(cfg)
	default:
		return nil, ErrUnsupportedSensorType
	}
}

// Sensors returns every currently-known sensor descriptor.
func (n *Node) Sensors() []Descriptor {
	return n.table.sensors()
}

// Package network implements the top-level façade: one node.Node per
// requested wire-format version, aggregated behind a single start/stop/
// event-loop/sensor surface.
package network

import (
	"errors"
	"fmt"

	"ndsi/codec"
	"ndsi/discovery"
	"ndsi/format"
	"ndsi/node"
	"ndsi/session"
	"ndsi/transport"
)

// ErrUnknownSensor is returned by Sensor when no constituent node's
// table knows the given sensor_uuid.
var ErrUnknownSensor = node.ErrUnknownSensor

// Config configures a Network. Versions defaults to {format.Latest()}
// when left empty, matching a client that only cares about the newest
// wire format.
type Config struct {
	Name        string
	Versions    []format.WireFormatVersion
	PeerFactory discovery.Factory
}

// Network aggregates one node.Node per requested wire-format version
// behind a single façade, the way this codebase's server-side relay
// aggregates many node connections behind one registry.
type Network struct {
	nodes []*node.Node
}

// New constructs a Network with one unstarted node.Node per
// cfg.Versions (or {format.Latest()} if empty).
func New(cfg Config) *Network {
	versions := cfg.Versions
	if len(versions) == 0 {
		versions = []format.WireFormatVersion{format.Latest()}
	}
	nodes := make([]*node.Node, 0, len(versions))
	for _, v := range versions {
		nodes = append(nodes, node.New(cfg.Name, v, cfg.PeerFactory))
	}
	return &Network{nodes: nodes}
}

// Nodes returns the constituent nodes, one per requested wire-format version.
func (net *Network) Nodes() []*node.Node { return net.nodes }

// AddCallback registers an event callback on every constituent node.
func (net *Network) AddCallback(cb node.EventCallback) {
	for _, n := range net.nodes {
		n.AddCallback(cb)
	}
}

// Start starts every constituent node. On a failure partway through, the
// nodes already started are stopped before the error is returned.
func (net *Network) Start() error {
	started := make([]*node.Node, 0, len(net.nodes))
	for _, n := range net.nodes {
		if err := n.Start(); err != nil {
			for _, s := range started {
				s.Stop()
			}
			return fmt.Errorf("network: start %s: %w", n.Version(), err)
		}
		started = append(started, n)
	}
	return nil
}

// Stop stops every constituent node, continuing past individual failures.
func (net *Network) Stop() error {
	var firstErr error
	for _, n := range net.nodes {
		if err := n.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Rejoin rejoins every constituent node.
func (net *Network) Rejoin() error {
	for _, n := range net.nodes {
		if err := n.Rejoin(); err != nil {
			return err
		}
	}
	return nil
}

// Whisper forwards to every constituent node.
func (net *Network) Whisper(peerUUID string, payload []byte) error {
	for _, n := range net.nodes {
		if err := n.Whisper(peerUUID, payload); err != nil {
			return err
		}
	}
	return nil
}

// Running reports whether any constituent node is running.
func (net *Network) Running() bool {
	for _, n := range net.nodes {
		if n.Running() {
			return true
		}
	}
	return false
}

// HasEvents reports whether any constituent node has a pending event.
func (net *Network) HasEvents() bool {
	for _, n := range net.nodes {
		if n.HasEvents() {
			return true
		}
	}
	return false
}

// HandleEvent services one pending event from the first constituent
// node that has one.
func (net *Network) HandleEvent() error {
	for _, n := range net.nodes {
		if n.HasEvents() {
			return n.HandleEvent()
		}
	}
	return nil
}

// Sensors returns the union of every constituent node's known sensors.
func (net *Network) Sensors() []node.Descriptor {
	var out []node.Descriptor
	for _, n := range net.nodes {
		out = append(out, n.Sensors()...)
	}
	return out
}

// Sensor queries each constituent node in order and returns the first
// match.
func (net *Network) Sensor(sensorUUID string, dialer transport.Dialer, frameFactory codec.FrameFactory) (session.Handle, error) {
	for _, n := range net.nodes {
		h, err := n.Sensor(sensorUUID, dialer, frameFactory)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, node.ErrUnknownSensor) {
			return nil, err
		}
	}
	return nil, ErrUnknownSensor
}

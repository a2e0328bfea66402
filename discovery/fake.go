package discovery

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FakeFabric is an in-memory discovery substrate used by this module's own
// tests and available to callers wiring integration tests against node/
// network without a real gossip backend. Peers created from the same
// Fabric see each other's Join/Shout/Whisper traffic synchronously.
type FakeFabric struct {
	mu      sync.Mutex
	members map[string]*FakePeer
	groups  map[string]map[string]bool // group -> peer uuid -> joined
}

func NewFakeFabric() *FakeFabric {
	return &FakeFabric{
		members: make(map[string]*FakePeer),
		groups:  make(map[string]map[string]bool),
	}
}

// NewPeer returns a Factory bound to this fabric, suitable for passing to
// a network node constructor.
func (f *FakeFabric) NewPeer() Factory {
	return func(name string) (Peer, error) {
		p := &FakePeer{
			fabric: f,
			id:     uuid.NewString(),
			name:   name,
			header: make(map[string]string),
		}
		return p, nil
	}
}

func (f *FakeFabric) register(p *FakePeer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[p.id] = p
}

func (f *FakeFabric) unregister(p *FakePeer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members, p.id)
	for g := range f.groups {
		delete(f.groups[g], p.id)
	}
}

func (f *FakeFabric) join(p *FakePeer, group string) {
	f.mu.Lock()
	if f.groups[group] == nil {
		f.groups[group] = make(map[string]bool)
	}
	already := f.groups[group][p.id]
	f.groups[group][p.id] = true
	peers := f.peersInGroupLocked(group)
	f.mu.Unlock()

	if already {
		return
	}
	for _, other := range peers {
		if other.id == p.id {
			continue
		}
		other.deliver(Event{Type: EventEnter, PeerUUID: p.id, PeerName: p.name, Group: group})
	}
}

func (f *FakeFabric) leave(p *FakePeer, group string) {
	f.mu.Lock()
	if f.groups[group] != nil {
		delete(f.groups[group], p.id)
	}
	peers := f.peersInGroupLocked(group)
	f.mu.Unlock()

	for _, other := range peers {
		other.deliver(Event{Type: EventLeave, PeerUUID: p.id, PeerName: p.name, Group: group})
	}
}

func (f *FakeFabric) shout(p *FakePeer, group string, payload []byte) {
	f.mu.Lock()
	peers := f.peersInGroupLocked(group)
	f.mu.Unlock()

	for _, other := range peers {
		if other.id == p.id {
			continue
		}
		other.deliver(Event{Type: EventShout, PeerUUID: p.id, PeerName: p.name, Group: group, Msg: [][]byte{payload}})
	}
}

// exit notifies every other registered peer that p is disconnecting,
// mirroring a gossip fabric's EXIT broadcast on peer departure (distinct
// from LEAVE, which only concerns a single group).
func (f *FakeFabric) exit(p *FakePeer) {
	f.mu.Lock()
	var others []*FakePeer
	for id, m := range f.members {
		if id != p.id {
			others = append(others, m)
		}
	}
	f.mu.Unlock()

	for _, other := range others {
		other.deliver(Event{Type: EventExit, PeerUUID: p.id, PeerName: p.name})
	}
}

func (f *FakeFabric) whisper(p *FakePeer, targetUUID string, payload []byte) error {
	f.mu.Lock()
	target, ok := f.members[targetUUID]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("discovery: unknown peer %s", targetUUID)
	}
	target.deliver(Event{Type: EventWhisper, PeerUUID: p.id, PeerName: p.name, Msg: [][]byte{payload}})
	return nil
}

// peersInGroupLocked must be called with f.mu held.
func (f *FakeFabric) peersInGroupLocked(group string) []*FakePeer {
	var out []*FakePeer
	for id := range f.groups[group] {
		if m, ok := f.members[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// FakePeer is FakeFabric's Peer implementation: a plain mutex-guarded
// event queue, no network I/O.
type FakePeer struct {
	fabric *FakeFabric
	id     string
	name   string

	mu      sync.Mutex
	header  map[string]string
	started bool
	events  []Event
}

func (p *FakePeer) Start() error {
	p.mu.Lock()
	p.started = true
	p.mu.Unlock()
	p.fabric.register(p)
	return nil
}

func (p *FakePeer) Stop() error {
	p.fabric.exit(p)
	p.fabric.unregister(p)
	p.mu.Lock()
	p.started = false
	p.events = nil
	p.mu.Unlock()
	return nil
}

func (p *FakePeer) Join(group string) error {
	p.fabric.join(p, group)
	return nil
}

func (p *FakePeer) Leave(group string) error {
	p.fabric.leave(p, group)
	return nil
}

func (p *FakePeer) SetHeader(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.header[key] = value
}

func (p *FakePeer) Whisper(peerUUID string, payload []byte) error {
	return p.fabric.whisper(p, peerUUID, payload)
}

func (p *FakePeer) Shout(group string, payload []byte) error {
	p.fabric.shout(p, group, payload)
	return nil
}

func (p *FakePeer) Endpoint() string { return "fake://" + p.id }
func (p *FakePeer) UUID() string     { return p.id }
func (p *FakePeer) Name() string     { return p.name }

func (p *FakePeer) deliver(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		p.events = append(p.events, e)
	}
}

func (p *FakePeer) HasEvent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events) > 0
}

func (p *FakePeer) PollEvent() (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return Event{}, false
	}
	e := p.events[0]
	p.events = p.events[1:]
	return e, true
}

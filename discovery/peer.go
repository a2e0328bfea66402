// Package discovery defines the discovery-substrate contract this module
// consumes but never implements: a gossip/beacon peer fabric (SHOUT,
// WHISPER, JOIN, EXIT semantics) that the network node treats as an
// opaque dependency providing named groups, peers, and multipart message
// delivery.
package discovery

// EventType enumerates the lifecycle and message events a Peer's event
// source can emit.
type EventType string

const (
	EventShout   EventType = "SHOUT"
	EventWhisper EventType = "WHISPER"
	EventJoin    EventType = "JOIN"
	EventExit    EventType = "EXIT"
	EventEnter   EventType = "ENTER"
	EventLeave   EventType = "LEAVE"
)

// Event is one occurrence from a Peer's event source.
type Event struct {
	Type     EventType
	PeerUUID string
	PeerName string
	Group    string
	Msg      [][]byte
}

// Peer is one endpoint in the discovery fabric. Implementations are
// supplied by the application (typically backed by a gossip/beacon
// library); this module ships none.
type Peer interface {
	Start() error
	Stop() error
	Join(group string) error
	Leave(group string) error
	SetHeader(key, value string)
	Whisper(peerUUID string, payload []byte) error
	Shout(group string, payload []byte) error
	Endpoint() string
	UUID() string
	Name() string

	// HasEvent is a non-blocking predicate: it reports whether an event
	// is immediately available from PollEvent. It never blocks and never
	// consumes the pending event.
	HasEvent() bool

	// PollEvent returns the next pending event without blocking. ok is
	// false if none was available; PollEvent must not be called unless a
	// preceding HasEvent() was true.
	PollEvent() (event Event, ok bool)
}

// Factory constructs a new, unstarted Peer. A network node calls this
// once per Start() with its own name, then applies its static headers
// through SetHeader; Rejoin reuses the existing peer.
type Factory func(name string) (Peer, error)

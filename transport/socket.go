// Package transport implements the three directional sockets a sensor
// session owns: a notification subscription, a command push, and an
// optional data subscription. The wire protocol assumes zeromq PUB/SUB
// and PUSH/PULL sockets with server-side prefix filtering; this module's
// dependency pack carries no zeromq binding, so the concrete
// implementation here is built on github.com/gorilla/websocket with
// length-prefixed multipart framing and prefix filtering done
// client-side.
package transport

import "errors"

// ErrClosed is returned by operations attempted on a socket after Close.
var ErrClosed = errors.New("transport: socket closed")

// ErrNoMessage is returned by Recv when HasMessage would have reported
// false; callers are expected to check the predicate first, but Recv
// guards against misuse rather than blocking.
var ErrNoMessage = errors.New("transport: no message pending")

// NotifySocket is a subscription socket carrying JSON control-plane
// notifications, filtered to a single prefix (normally the owning
// sensor's uuid).
type NotifySocket interface {
	// HasMessage is a non-blocking predicate.
	HasMessage() bool
	// Recv returns the next pending multipart message. It must not be
	// called unless a preceding HasMessage() was true.
	Recv() ([][]byte, error)
	Close() error
}

// CommandSocket is a push socket carrying JSON control-plane commands.
type CommandSocket interface {
	Send(frames [][]byte) error
	Close() error
}

// DataSocket is a subscription socket carrying binary data-plane
// messages, filtered to a prefix (empty for annotate sessions).
type DataSocket interface {
	// HasMessage is a non-blocking predicate.
	HasMessage() bool
	// Recv returns the next pending multipart message. It must not be
	// called unless a preceding HasMessage() was true.
	Recv() ([][]byte, error)
	Close() error
}

// Dialer opens the three sockets a session needs against a publisher's
// advertised endpoints.
type Dialer interface {
	DialNotify(endpoint, prefix string) (NotifySocket, error)
	DialCommand(endpoint string) (CommandSocket, error)
	// DialData honors highWaterMark as a hint on the receive queue depth;
	// implementations may drop the oldest queued message once the bound
	// is exceeded rather than grow unbounded.
	DialData(endpoint, prefix string, highWaterMark int) (DataSocket, error)
}

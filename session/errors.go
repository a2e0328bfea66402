package session

import "errors"

// ErrNotDataSubSupported is returned by data-plane operations invoked on
// a session with no data socket.
var ErrNotDataSubSupported = errors.New("session: no data subscription on this sensor")

// ErrNoDataMessage reports that no data message is pending. FetchData
// does not return it: with nothing queued, FetchData returns no values
// and a nil error.
var ErrNoDataMessage = errors.New("session: no data message pending")

// ErrNoNotification is returned by HandleNotification when HasNotifications is false.
var ErrNoNotification = errors.New("session: no notification pending")

// ErrTimeout is returned by GetNewestDataFrame when no frame arrives
// within the caller-supplied timeout.
var ErrTimeout = errors.New("session: timed out waiting for a data frame")

// ErrStreamEmpty is returned by GetNewestDataFrame when a message arrived
// but decoding produced no frame.
var ErrStreamEmpty = errors.New("session: data arrived but decoded to no frame")

package session

import "ndsi/format"

// Handle is the common surface every sensor session kind exposes,
// regardless of whether it carries a data plane. *Session satisfies it
// directly; the five typed sessions satisfy it by embedding *Session.
type Handle interface {
	UUID() string
	Name() string
	Kind() format.SensorKind
	Controls() *ControlCache
	AddCallback(cb Callback)

	HasNotifications() bool
	HandleNotification() error

	RefreshControls() error
	SetControlValue(controlID string, value interface{}) error
	ResetControlValue(controlID string) error
	ResetAllControlValues() error

	HasData() (bool, error)
	FetchData() ([]format.Value, error)

	Unlink() error
}

var (
	_ Handle = (*Session)(nil)
	_ Handle = (*VideoSession)(nil)
	_ Handle = (*AnnotateSession)(nil)
	_ Handle = (*GazeSession)(nil)
	_ Handle = (*IMUSession)(nil)
	_ Handle = (*EventSession)(nil)
)

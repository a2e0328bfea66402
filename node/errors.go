package node

import "errors"

// ErrUnknownSensor is returned by Node.Sensor for a sensor_uuid the
// reconciliation table has no descriptor for.
var ErrUnknownSensor = errors.New("node: unknown sensor uuid")

// ErrUnsupportedSensorType is returned when a descriptor names a
// sensor_type outside format.SupportedKinds.
var ErrUnsupportedSensorType = errors.New("node: unsupported sensor type")

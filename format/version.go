// Package format holds the wire-format version enum and the versioned
// binary formatter registry: it decodes per-sensor data-plane payloads
// into typed values.
package format

import "fmt"

// WireFormatVersion is a closed enumeration of supported binary wire
// formats. The zero value is not a valid version.
type WireFormatVersion string

const (
	V3 WireFormatVersion = "v3"
	V4 WireFormatVersion = "v4"
)

// SupportedFormats returns every wire-format version this registry knows
// how to dispatch, in no particular order.
func SupportedFormats() []WireFormatVersion {
	return []WireFormatVersion{V3, V4}
}

// Latest returns the member of SupportedFormats with the greatest
// VersionMajor.
func Latest() WireFormatVersion {
	latest := SupportedFormats()[0]
	for _, v := range SupportedFormats() {
		if v.VersionMajor() > latest.VersionMajor() {
			latest = v
		}
	}
	return latest
}

// VersionMajor derives the positive integer major version from the
// version's name, e.g. V3.VersionMajor() == 3.
func (v WireFormatVersion) VersionMajor() int {
	major := 0
	fmt.Sscanf(string(v), "v%d", &major)
	return major
}

func (v WireFormatVersion) String() string {
	return string(v)
}

// GroupName derives the discovery-group identifier joined by a network
// node running this wire-format version. Distinct versions always yield
// distinct names.
func GroupName(v WireFormatVersion) string {
	return fmt.Sprintf("pupil-mobile-%s", v)
}

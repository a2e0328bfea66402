package format

import "errors"

// ErrStreamFormat covers malformed or unrecognized binary payload
// layouts: a video header naming a format code other than FormatMJPEG or
// FormatH264,
// or an event header naming an unsupported string encoding.
var ErrStreamFormat = errors.New("ndsi/format: stream format error")

// ErrShortBuffer is wrapped into ErrStreamFormat-adjacent errors when a
// header or body is too short for its declared layout.
var ErrShortBuffer = errors.New("ndsi/format: buffer too short for declared layout")

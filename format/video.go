package format

import (
	"encoding/binary"
	"fmt"
	"math"

	"ndsi/codec"
)

// Video format codes carried in the little-endian u32 at bytes 0-3 of the
// header. FormatH264 is a placeholder for the value the codec module
// actually reserves — the wire protocol this registry decodes never
// specifies one canonically. Decode accepts exactly these two codes; any
// other code is a stream error, without consulting the FrameFactory.
const (
	FormatMJPEG uint32 = 0x10
	FormatH264  uint32 = 0x20
)

const (
	videoHeaderLenV3 = 4 + 4 + 4 + 4 + 8 + 4 + 4 // <LLLLdLL
	videoHeaderLenV4 = 4 + 4 + 4 + 4 + 8 + 4 + 4 // <LLLLQLL
)

// VideoValue is a decoded video frame, JPEG or H.264, produced by the
// application-supplied codec.FrameFactory.
type VideoValue struct {
	Frame codec.Frame
}

func (VideoValue) isValue() {}

type videoFormatter struct {
	version  WireFormatVersion
	factory  codec.FrameFactory
	lastH264 codec.Frame
}

func newVideoFormatter(version WireFormatVersion, factory codec.FrameFactory) Formatter {
	switch version {
	case V3, V4:
		return &videoFormatter{version: version, factory: factory}
	default:
		return unsupportedFormatter{}
	}
}

// Reset clears the cached last-good H.264 frame, so a following H.264
// body the codec cannot turn into a frame yields no value instead of a
// stale one.
func (f *videoFormatter) Reset() {
	f.lastH264 = nil
}

func (f *videoFormatter) Decode(msg DataMessage) ([]Value, error) {
	header, body, err := f.parseHeader(msg)
	if err != nil {
		return nil, err
	}

	switch header.FormatCode {
	case FormatMJPEG:
		frame, err := f.factory.CreateJPEGFrame(body, header)
		if err != nil {
			return nil, fmt.Errorf("ndsi/format: decode jpeg frame: %w", err)
		}
		if frame == nil {
			return nil, nil
		}
		return []Value{VideoValue{Frame: frame}}, nil
	case FormatH264:
		frame, err := f.factory.CreateH264Frame(body, header)
		if err != nil {
			return nil, fmt.Errorf("ndsi/format: decode h264 frame: %w", err)
		}
		if frame != nil {
			f.lastH264 = frame
		}
		if f.lastH264 == nil {
			return nil, nil
		}
		return []Value{VideoValue{Frame: f.lastH264}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown video format code 0x%x", ErrStreamFormat, header.FormatCode)
	}
}

func (f *videoFormatter) parseHeader(msg DataMessage) (codec.VideoFrameHeader, []byte, error) {
	switch f.version {
	case V3:
		if len(msg.Header) < videoHeaderLenV3 {
			return codec.VideoFrameHeader{}, nil, fmt.Errorf("%w: video v3 header", ErrShortBuffer)
		}
		b := msg.Header
		timestampS := math.Float64frombits(binary.LittleEndian.Uint64(b[16:24]))
		return codec.VideoFrameHeader{
			FormatCode:  binary.LittleEndian.Uint32(b[0:4]),
			Width:       binary.LittleEndian.Uint32(b[4:8]),
			Height:      binary.LittleEndian.Uint32(b[8:12]),
			Sequence:    binary.LittleEndian.Uint32(b[12:16]),
			TimestampUS: timestampS * 1e6,
			Reserved:    binary.LittleEndian.Uint32(b[28:32]),
		}, msg.Body, nil
	case V4:
		if len(msg.Header) < videoHeaderLenV4 {
			return codec.VideoFrameHeader{}, nil, fmt.Errorf("%w: video v4 header", ErrShortBuffer)
		}
		b := msg.Header
		timestampNS := binary.LittleEndian.Uint64(b[16:24])
		return codec.VideoFrameHeader{
			FormatCode:  binary.LittleEndian.Uint32(b[0:4]),
			Width:       binary.LittleEndian.Uint32(b[4:8]),
			Height:      binary.LittleEndian.Uint32(b[8:12]),
			Sequence:    binary.LittleEndian.Uint32(b[12:16]),
			TimestampUS: float64(timestampNS) / 1e3,
			Reserved:    binary.LittleEndian.Uint32(b[28:32]),
		}, msg.Body, nil
	default:
		return codec.VideoFrameHeader{}, nil, ErrUnsupportedFormat
	}
}

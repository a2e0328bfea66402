package format

import (
	"encoding/binary"
	"fmt"
	"math"
)

// IMUValue is a single decoded inertial-measurement sample.
type IMUValue struct {
	Timestamp              float64 // seconds
	AccelX, AccelY, AccelZ float32
	GyroX, GyroY, GyroZ    float32
}

func (IMUValue) isValue() {}

const imuRecordLen = 32 // 8-byte timestamp + 6 * 4-byte floats

type imuFormatter struct {
	version WireFormatVersion
}

func newIMUFormatter(version WireFormatVersion) Formatter {
	switch version {
	case V3, V4:
		return imuFormatter{version: version}
	default:
		return unsupportedFormatter{}
	}
}

func (imuFormatter) Reset() {}

func (f imuFormatter) Decode(msg DataMessage) ([]Value, error) {
	body := msg.Body
	if len(body)%imuRecordLen != 0 {
		return nil, fmt.Errorf("%w: imu body not a multiple of %d bytes", ErrShortBuffer, imuRecordLen)
	}

	count := len(body) / imuRecordLen
	values := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		rec := body[i*imuRecordLen : (i+1)*imuRecordLen]

		var timestamp float64
		switch f.version {
		case V3:
			timestamp = math.Float64frombits(binary.LittleEndian.Uint64(rec[0:8]))
		case V4:
			timestamp = float64(binary.LittleEndian.Uint64(rec[0:8])) * 1e-9
		}

		floats := rec[8:32]
		readF32 := func(off int) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(floats[off : off+4]))
		}

		values = append(values, IMUValue{
			Timestamp: timestamp,
			AccelX:    readF32(0),
			AccelY:    readF32(4),
			AccelZ:    readF32(8),
			GyroX:     readF32(12),
			GyroY:     readF32(16),
			GyroZ:     readF32(20),
		})
	}
	return values, nil
}

package format_test

import (
	"math"
	"testing"

	"ndsi/format"
)

func TestGazeV4Decode(t *testing.T) {
	header := []byte{0x08, 0xCD, 0x9D, 0xC4, 0xC2, 0x37, 0xB6, 0x15}
	body := []byte{0x2A, 0x0B, 0x0D, 0x44, 0x5C, 0x91, 0x07, 0x44}

	f := format.GetFormatter(format.KindGaze, format.V4, nil)
	values, err := f.Decode(format.DataMessage{Header: header, Body: body})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("got %d values, want 1", len(values))
	}

	gaze := values[0].(format.GazeValue)
	if math.Abs(float64(gaze.X)-564.17444) > 1e-2 {
		t.Errorf("X = %v, want ~564.17444", gaze.X)
	}
	if math.Abs(float64(gaze.Y)-542.27124) > 1e-2 {
		t.Errorf("Y = %v, want ~542.27124", gaze.Y)
	}
	if math.Abs(gaze.Timestamp-1564499230.2196853) > 1e-3 {
		t.Errorf("Timestamp = %v, want ~1564499230.2196853", gaze.Timestamp)
	}
}

func TestGazeV3Unsupported(t *testing.T) {
	f := format.GetFormatter(format.KindGaze, format.V3, nil)
	if !format.IsUnsupported(f) {
		t.Fatal("gaze V3 should be unsupported")
	}
}

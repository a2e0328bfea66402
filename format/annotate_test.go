package format_test

import (
	"encoding/binary"
	"math"
	"testing"

	"ndsi/format"
)

func TestAnnotateV3Decode(t *testing.T) {
	header := make([]byte, 9)
	header[0] = 7
	binary.LittleEndian.PutUint64(header[1:9], math.Float64bits(12.5))

	f := format.GetFormatter(format.KindAnnotate, format.V3, nil)
	values, err := f.Decode(format.DataMessage{Header: header})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	a := values[0].(format.AnnotateValue)
	if a.Key != 7 || a.Timestamp != 12.5 {
		t.Errorf("got %+v, want Key=7 Timestamp=12.5", a)
	}
}

func TestAnnotateV4Decode(t *testing.T) {
	header := make([]byte, 9)
	header[0] = 3
	binary.LittleEndian.PutUint64(header[1:9], 5_000_000_000)

	f := format.GetFormatter(format.KindAnnotate, format.V4, nil)
	values, err := f.Decode(format.DataMessage{Header: header})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	a := values[0].(format.AnnotateValue)
	if a.Key != 3 {
		t.Errorf("Key = %d, want 3", a.Key)
	}
	if math.Abs(a.Timestamp-5.0) > 1e-9 {
		t.Errorf("Timestamp = %v, want 5.0", a.Timestamp)
	}
}

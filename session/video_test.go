package session_test

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"ndsi/codec"
	"ndsi/format"
	"ndsi/session"
	"ndsi/transport"
)

type fakeFrame struct{ tag string }

type fakeFrameFactory struct{}

func (fakeFrameFactory) CreateJPEGFrame(body []byte, header codec.VideoFrameHeader) (codec.Frame, error) {
	return fakeFrame{tag: string(body)}, nil
}

func (fakeFrameFactory) CreateH264Frame(body []byte, header codec.VideoFrameHeader) (codec.Frame, error) {
	if len(body) == 0 {
		return nil, nil // delta frame with nothing new to contribute
	}
	return fakeFrame{tag: string(body)}, nil
}

func videoHeaderV4(formatCode uint32) []byte {
	h := make([]byte, 32)
	binary.LittleEndian.PutUint32(h[0:4], formatCode)
	binary.LittleEndian.PutUint32(h[4:8], 640)
	binary.LittleEndian.PutUint32(h[8:12], 480)
	return h
}

func TestGetNewestDataFrameReturnsLastQueuedFrame(t *testing.T) {
	broker := transport.NewFakeBroker()
	cfg := session.Config{
		SensorUUID:      "video-sensor",
		SensorName:      "Video",
		Version:         format.V4,
		NotifyEndpoint:  "fake://notify",
		CommandEndpoint: "fake://command",
		DataEndpoint:    "fake://data",
	}
	s, err := session.NewVideoSession(cfg, broker, fakeFrameFactory{})
	if err != nil {
		t.Fatalf("NewVideoSession: %v", err)
	}

	header := videoHeaderV4(format.FormatMJPEG)
	broker.PublishData([][]byte{[]byte("video-sensor"), header, []byte("frame-a")})
	broker.PublishData([][]byte{[]byte("video-sensor"), header, []byte("frame-b")})

	frame, err := s.GetNewestDataFrame(100 * time.Millisecond)
	if err != nil {
		t.Fatalf("GetNewestDataFrame: %v", err)
	}
	got := frame.Frame.(fakeFrame)
	if got.tag != "frame-b" {
		t.Errorf("got %+v, want the last queued jpeg frame", got)
	}
}

func TestGetNewestDataFrameTimesOutWithNoData(t *testing.T) {
	broker := transport.NewFakeBroker()
	cfg := session.Config{
		SensorUUID:      "video-sensor",
		SensorName:      "Video",
		Version:         format.V4,
		NotifyEndpoint:  "fake://notify",
		CommandEndpoint: "fake://command",
		DataEndpoint:    "fake://data",
	}
	s, err := session.NewVideoSession(cfg, broker, fakeFrameFactory{})
	if err != nil {
		t.Fatalf("NewVideoSession: %v", err)
	}

	_, err = s.GetNewestDataFrame(20 * time.Millisecond)
	if err != session.ErrTimeout {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestVideoSessionWithNilFactoryIsUnsupported(t *testing.T) {
	broker := transport.NewFakeBroker()
	cfg := session.Config{
		SensorUUID:      "video-sensor",
		SensorName:      "Video",
		Version:         format.V4,
		NotifyEndpoint:  "fake://notify",
		CommandEndpoint: "fake://command",
		DataEndpoint:    "fake://data",
	}
	s, err := session.NewVideoSession(cfg, broker, nil)
	if err != nil {
		t.Fatalf("NewVideoSession: %v", err)
	}

	header := videoHeaderV4(format.FormatMJPEG)
	broker.PublishData([][]byte{[]byte("video-sensor"), header, []byte("x")})

	_, err = s.FetchData()
	if !errors.Is(err, format.ErrUnsupportedFormat) {
		t.Fatalf("FetchData err = %v, want ErrUnsupportedFormat", err)
	}
}

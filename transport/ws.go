package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// WSDialer dials the three directional sockets over gorilla/websocket
// connections. Each socket gets its own connection; the publisher side
// is expected to broadcast every multipart message to every connected
// subscriber, with prefix filtering applied here, client-side.
type WSDialer struct{}

func (WSDialer) DialNotify(endpoint, prefix string) (NotifySocket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial notify %s: %w", endpoint, err)
	}
	s := &wsSubSocket{prefix: prefix, queueCap: 0}
	s.start(conn, "Notify")
	return s, nil
}

func (WSDialer) DialCommand(endpoint string) (CommandSocket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial command %s: %w", endpoint, err)
	}
	return &wsCommandSocket{conn: conn}, nil
}

func (WSDialer) DialData(endpoint, prefix string, highWaterMark int) (DataSocket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial data %s: %w", endpoint, err)
	}
	s := &wsSubSocket{prefix: prefix, queueCap: highWaterMark}
	s.start(conn, "Data")
	return s, nil
}

// wsSubSocket backs both NotifySocket and DataSocket: a reader goroutine
// drains the underlying connection into a bounded FIFO of multipart
// messages whose first frame matches prefix. queueCap <= 0 means
// unbounded (used for notify sockets; data sockets use the high-water
// mark the caller passes to DialData).
type wsSubSocket struct {
	conn     *websocket.Conn
	prefix   string
	queueCap int

	mu     sync.Mutex
	queue  [][][]byte
	closed bool
}

func (s *wsSubSocket) start(conn *websocket.Conn, component string) {
	s.conn = conn
	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frames, err := decodeMultipart(raw)
			if err != nil {
				log.Printf("[%s] malformed frame from %s: %v", component, conn.RemoteAddr(), err)
				continue
			}
			if len(frames) == 0 || !matchesPrefix(frames[0], s.prefix) {
				continue
			}
			s.enqueue(frames)
		}
	}()
}

func matchesPrefix(first []byte, prefix string) bool {
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(string(first), prefix)
}

func (s *wsSubSocket) enqueue(frames [][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, frames)
	if s.queueCap > 0 && len(s.queue) > s.queueCap {
		s.queue = s.queue[len(s.queue)-s.queueCap:]
	}
}

func (s *wsSubSocket) HasMessage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0
}

func (s *wsSubSocket) Recv() ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, ErrNoMessage
	}
	frames := s.queue[0]
	s.queue = s.queue[1:]
	return frames, nil
}

func (s *wsSubSocket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()
	return s.conn.Close()
}

type wsCommandSocket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsCommandSocket) Send(frames [][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrClosed
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, encodeMultipart(frames))
}

func (s *wsCommandSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// encodeMultipart packs frames as [u32 frame count][per frame: u32 len, bytes].
func encodeMultipart(frames [][]byte) []byte {
	var buf bytes.Buffer
	var countHdr [4]byte
	binary.BigEndian.PutUint32(countHdr[:], uint32(len(frames)))
	buf.Write(countHdr[:])
	for _, f := range frames {
		var lenHdr [4]byte
		binary.BigEndian.PutUint32(lenHdr[:], uint32(len(f)))
		buf.Write(lenHdr[:])
		buf.Write(f)
	}
	return buf.Bytes()
}

func decodeMultipart(raw []byte) ([][]byte, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("transport: frame too short for count header")
	}
	count := binary.BigEndian.Uint32(raw[0:4])
	raw = raw[4:]
	frames := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(raw) < 4 {
			return nil, fmt.Errorf("transport: truncated frame %d", i)
		}
		n := binary.BigEndian.Uint32(raw[0:4])
		raw = raw[4:]
		if uint32(len(raw)) < n {
			return nil, fmt.Errorf("transport: truncated frame %d body", i)
		}
		frames = append(frames, raw[:n])
		raw = raw[n:]
	}
	return frames, nil
}

package broker

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second
)

// wsStream adapts a websocket connection to the byte stream STOMP expects.
// Each complete STOMP frame, and each bare heartbeat, goes out as one text
// message.
type wsStream struct {
	conn *websocket.Conn

	reader io.Reader

	writeMu sync.Mutex
	pending []byte

	closeOnce sync.Once
	done      chan struct{}
	errMu     sync.Mutex
	err       error
}

func newWSStream(conn *websocket.Conn) *wsStream {
	return &wsStream{
		conn: conn,
		done: make(chan struct{}),
	}
}

func (s *wsStream) Read(p []byte) (int, error) {
	for {
		if s.reader == nil {
			_, r, err := s.conn.NextReader()
			if err != nil {
				s.fail(err)
				return 0, err
			}
			s.reader = r
		}

		n, err := s.reader.Read(p)
		if errors.Is(err, io.EOF) {
			s.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.pending = append(s.pending, p...)

	for {
		idx := bytes.IndexByte(s.pending, 0)
		if idx < 0 {
			break
		}
		if err := s.send(s.pending[:idx+1]); err != nil {
			return 0, err
		}
		rest := copy(s.pending, s.pending[idx+1:])
		s.pending = s.pending[:rest]
	}

	if len(s.pending) > 0 && len(bytes.Trim(s.pending, "\r\n")) == 0 {
		if err := s.send(s.pending); err != nil {
			return 0, err
		}
		s.pending = s.pending[:0]
	}

	return len(p), nil
}

func (s *wsStream) send(frame []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

func (s *wsStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		err = s.conn.Close()
		close(s.done)
	})
	return err
}

// fail records the first transport error and closes the stream.
func (s *wsStream) fail(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
	go s.Close()
}

func (s *wsStream) Done() <-chan struct{} {
	return s.done
}

func (s *wsStream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

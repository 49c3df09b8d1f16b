package broker

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/gorilla/websocket"

	"auction-sync/internal/domain"
	"auction-sync/pkg/logger"
)

type Config struct {
	Endpoint          string
	HeartbeatOutgoing time.Duration
	HeartbeatIncoming time.Duration
	HandshakeTimeout  time.Duration
}

// StompDialer opens STOMP sessions over a raw websocket.
type StompDialer struct {
	cfg    Config
	ws     *websocket.Dialer
	logger logger.Logger
}

func NewStompDialer(cfg Config, log logger.Logger) *StompDialer {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	return &StompDialer{
		cfg: cfg,
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
		logger: log,
	}
}

// Dial performs the websocket upgrade and the STOMP CONNECT exchange. The
// credential travels as a bearer token on both.
func (d *StompDialer) Dial(ctx context.Context, credential string) (domain.BrokerSession, error) {
	header := http.Header{}
	bearer := "Bearer " + credential
	if credential != "" {
		header.Set("Authorization", bearer)
	}

	conn, resp, err := d.ws.DialContext(ctx, d.cfg.Endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	stream := newWSStream(conn)
	stop := context.AfterFunc(ctx, func() {
		stream.Close()
	})

	opts := []func(*stomp.Conn) error{
		stomp.ConnOpt.HeartBeat(d.cfg.HeartbeatOutgoing, d.cfg.HeartbeatIncoming),
		stomp.ConnOpt.Host("/"),
	}
	if credential != "" {
		opts = append(opts, stomp.ConnOpt.Header("Authorization", bearer))
	}

	stompConn, err := stomp.Connect(stream, opts...)
	if !stop() {
		if stompConn != nil {
			stompConn.MustDisconnect()
		}
		stream.Close()
		return nil, ctx.Err()
	}
	if err != nil {
		stream.Close()
		return nil, fmt.Errorf("stomp connect: %w", err)
	}

	d.logger.Debug("Broker session established", "endpoint", d.cfg.Endpoint)
	return &stompSession{
		conn:   stompConn,
		stream: stream,
		logger: d.logger,
	}, nil
}

type stompSession struct {
	conn   *stomp.Conn
	stream *wsStream
	logger logger.Logger

	errMu     sync.Mutex
	err       error
	closeOnce sync.Once
}

func (s *stompSession) Subscribe(topic string, handler domain.MessageHandler) (domain.SubscriptionHandle, error) {
	sub, err := s.conn.Subscribe(topic, stomp.AckAuto)
	if err != nil {
		return nil, err
	}

	h := &stompHandle{sub: sub}
	go s.pump(topic, h, handler)
	return h, nil
}

func (s *stompSession) pump(topic string, h *stompHandle, handler domain.MessageHandler) {
	for msg := range h.sub.C {
		if msg.Err != nil {
			if h.closed.Load() {
				return
			}
			s.logger.Warn("Subscription failed", "topic", topic, "error", msg.Err)
			s.fail(msg.Err)
			return
		}
		handler(msg.Body)
	}
}

func (s *stompSession) fail(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
	s.stream.Close()
}

func (s *stompSession) Done() <-chan struct{} {
	return s.stream.Done()
}

func (s *stompSession) Err() error {
	s.errMu.Lock()
	err := s.err
	s.errMu.Unlock()
	if err != nil {
		return err
	}
	if err := s.stream.Err(); err != nil {
		return err
	}
	return nil
}

func (s *stompSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		select {
		case <-s.stream.Done():
		default:
			if dErr := s.conn.MustDisconnect(); dErr != nil {
				s.logger.Debug("Disconnect frame failed", "error", dErr)
			}
		}
		err = s.stream.Close()
	})
	return err
}

type stompHandle struct {
	sub    *stomp.Subscription
	closed atomic.Bool
}

func (h *stompHandle) Unsubscribe() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	return h.sub.Unsubscribe()
}

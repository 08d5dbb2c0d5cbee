package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000

	wsTypeState = "bench_state"
	wsTypeError = "error"
)

// wsEnvelope is one frame of the bench stream. Seq grows by one per frame
// so a dashboard can tell a quiet bench from a stalled connection.
type wsEnvelope struct {
	Type  string          `json:"type"`
	Seq   uint64          `json:"seq"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Bench dashboards are served from other hosts on the lab network.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSession streams the bench state to one client. A state frame is sent
// only when relays or the last report changed; a failed lookup sends an
// error frame and the stream carries on.
type wsSession struct {
	h    *Handler
	conn *websocket.Conn
	seq  uint64
	last []byte
}

// wsConnect upgrades the request and polls the bench state every interval
// (?interval=2s or ?interval_ms=2000) until the client goes away.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.wsLog("ws_upgrade_failed", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	s := &wsSession{h: h, conn: conn}
	if err := s.run(c.Request.Context(), interval, done); err != nil {
		h.wsLog("ws_write_failed", err)
	}
}

func (s *wsSession) run(ctx context.Context, interval time.Duration, done <-chan struct{}) error {
	poll := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer poll.Stop()
	defer ping.Stop()

	if err := s.poll(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-poll.C:
			if err := s.poll(ctx); err != nil {
				return err
			}
		}
	}
}

// poll writes a frame when the bench state changed or could not be read.
// Only write errors are returned.
func (s *wsSession) poll(ctx context.Context) error {
	st, err := s.h.services.Monitoring.GetState(ctx)
	if err != nil {
		s.h.wsLog("ws_get_state_failed", err)
		s.last = nil
		return s.write(wsEnvelope{Type: wsTypeError, Error: errGetState})
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if bytes.Equal(data, s.last) {
		return nil
	}
	s.last = data
	return s.write(wsEnvelope{Type: wsTypeState, Data: data})
}

func (s *wsSession) write(env wsEnvelope) error {
	s.seq++
	env.Seq = s.seq
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(env)
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 within bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

// startReader drains client frames so control messages are handled, and
// closes done when the client disconnects.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.wsLog("ws_read_closed", err)
			return
		}
	}
}

func (h *Handler) wsLog(key string, err error) {
	if h.log != nil {
		h.log.Infow(key, "err", err)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/tbraun92/gamehub/internal/domain"
	apperrors "github.com/tbraun92/gamehub/internal/errors"
	"github.com/tbraun92/gamehub/internal/hub"
	"github.com/tbraun92/gamehub/internal/logging"
	"github.com/tbraun92/gamehub/internal/metrics"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 512

	// inboundRate bounds commands per connection; excess is discarded
	// without closing the connection.
	inboundRate  = 10
	inboundBurst = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Clients connect from whatever address the hotspot hands out.
		return true
	},
}

func (s *Server) handleContentSocket(c echo.Context) error {
	return s.serveSocket(c, domain.GroupContentUpdates, s.contentSnapshot)
}

func (s *Server) handleStatsSocket(c echo.Context) error {
	return s.serveSocket(c, domain.GroupDeviceStats, s.statsSnapshot)
}

// serveSocket subscribes, upgrades, sends the connect snapshot, then pumps
// events until the client goes away. Subscribing before the snapshot means
// an update racing the snapshot is queued, not lost.
func (s *Server) serveSocket(c echo.Context, group string, snapshot func(context.Context) ([]byte, error)) error {
	sub, err := s.hub.Subscribe(group)
	if err != nil {
		return c.JSON(503, apperrors.ErrorResponse{Error: "too many connected clients", Type: apperrors.TypeTransport})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.hub.Unsubscribe(sub)
		logging.WithGroup(group).Warn("Failed to upgrade websocket", "error", err)
		return nil
	}

	sess := &wsSession{
		conn:     conn,
		sub:      sub,
		presence: s.presence,
		snapshot: snapshot,
		outbound: make(chan []byte, 4),
		limiter:  rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
		closed:   make(chan struct{}),
	}

	ctx := c.Request().Context()
	if key := c.QueryParam("session"); key != "" {
		sess.sessionKey = key
		if err := s.presence.RecordContact(ctx, key, c.RealIP(), c.Request().UserAgent()); err != nil {
			logging.WithSessionKey(key).Warn("Failed to record device contact", "error", err)
		}
	}

	sess.run(ctx)

	s.hub.Unsubscribe(sub)
	if sess.sessionKey != "" {
		// The request context is gone once the client disconnects.
		s.presence.MarkDisconnected(context.Background(), sess.sessionKey)
	}

	return nil
}

// contentSnapshot encodes the current active content as a content_update
// event. Content is null when nothing is active.
func (s *Server) contentSnapshot(ctx context.Context) ([]byte, error) {
	item, err := s.contents.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	var projection *domain.ContentProjection
	if item != nil {
		projection = item.Projection()
	}
	return domain.EncodeContentUpdate(projection)
}

// statsSnapshot encodes the current statistics as a stats_update event.
func (s *Server) statsSnapshot(ctx context.Context) ([]byte, error) {
	snapshot, err := s.stats.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return domain.EncodeStatsUpdate(snapshot)
}

// wsSession is one websocket connection. The write loop is the only
// goroutine touching the connection's write side after the connect snapshot;
// the read loop feeds it through outbound.
type wsSession struct {
	conn     *websocket.Conn
	sub      *hub.Subscriber
	presence presenceService
	snapshot func(context.Context) ([]byte, error)
	outbound chan []byte
	limiter  *rate.Limiter

	// sessionKey binds this transport to a device. Set at connect via the
	// session query parameter or by the first heartbeat; only the read side
	// touches it.
	sessionKey string

	closeOnce sync.Once
	closed    chan struct{}
}

func (w *wsSession) run(ctx context.Context) {
	if event, err := w.snapshot(ctx); err != nil {
		logging.WithGroup(w.sub.Group()).Error("Failed to build connect snapshot", "error", err)
	} else if err := w.write(event); err != nil {
		w.conn.Close()
		return
	}

	go w.writeLoop()
	w.readLoop(ctx)
	w.shutdown()
}

func (w *wsSession) write(event []byte) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, event)
}

func (w *wsSession) shutdown() {
	w.closeOnce.Do(func() {
		close(w.closed)
		w.conn.Close()
	})
}

func (w *wsSession) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-w.sub.C():
			if err := w.write(event); err != nil {
				w.shutdown()
				return
			}
		case <-w.sub.Done():
			// Evicted by the hub or hub stopped.
			w.shutdown()
			return
		case event := <-w.outbound:
			if err := w.write(event); err != nil {
				w.shutdown()
				return
			}
		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				w.shutdown()
				return
			}
		case <-w.closed:
			return
		}
	}
}

func (w *wsSession) readLoop(ctx context.Context) {
	w.conn.SetReadLimit(maxMessageSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := w.conn.ReadMessage()
		if err != nil {
			return
		}

		if !w.limiter.Allow() {
			metrics.WebsocketDiscardedMessages.Inc()
			continue
		}

		var msg domain.InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// Malformed input never kills the connection.
			metrics.WebsocketDiscardedMessages.Inc()
			continue
		}

		switch msg.Type {
		case domain.TypeGetActiveContent:
			metrics.WebsocketInboundCommands.WithLabelValues(msg.Type).Inc()
			event, err := w.snapshot(ctx)
			if err != nil {
				logging.WithGroup(w.sub.Group()).Error("Failed to build snapshot", "error", err)
				continue
			}
			select {
			case w.outbound <- event:
			default:
				metrics.WebsocketDiscardedMessages.Inc()
			}
		case domain.TypeDeviceHeartbeat:
			metrics.WebsocketInboundCommands.WithLabelValues(msg.Type).Inc()
			w.handleHeartbeat(ctx, msg.SessionID)
		default:
			metrics.WebsocketDiscardedMessages.Inc()
		}
	}
}

func (w *wsSession) handleHeartbeat(ctx context.Context, sessionID string) {
	if sessionID == "" {
		metrics.WebsocketDiscardedMessages.Inc()
		return
	}
	w.sessionKey = sessionID

	err := w.presence.Heartbeat(ctx, w.sessionKey)
	if errors.Is(err, domain.ErrDeviceNotFound) {
		// Device unknown, e.g. the server restarted since the page loaded.
		err = w.presence.RecordContact(ctx, w.sessionKey, "", "")
	}
	if err != nil {
		logging.WithSessionKey(w.sessionKey).Warn("Heartbeat failed", "error", err)
	}
}

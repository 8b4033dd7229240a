package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"orderflow/internal/realtime"
	"orderflow/internal/realtime/wire"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// wsSender writes frames to one websocket. The dispatcher calls Send from a
// single goroutine per connection; pings go through WriteControl, which may run
// concurrently with it.
type wsSender struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	closeOnce    sync.Once
}

func (w *wsSender) Send(_ context.Context, env wire.Envelope) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		return err
	}
	return w.conn.WriteJSON(env)
}

func (w *wsSender) Close() error {
	var err error
	w.closeOnce.Do(func() {
		_ = w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "closing"),
			time.Now().Add(w.writeTimeout))
		err = w.conn.Close()
	})
	return err
}

// Live handles GET /api/v1/ws. The connection lives until the client goes
// away or the dispatcher evicts it.
func (s *Server) Live(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already answered the client.
		s.logger.WarnContext(c.Request().Context(), "websocket upgrade failed", "error", err)
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	sender := &wsSender{conn: ws, writeTimeout: s.live.WriteTimeout}
	conn := realtime.Connection{ID: realtime.NewConnectionID(), UserID: actor.ID, Role: actor.Role}
	if err = s.hub.ConnectionOpened(ctx, conn, sender); err != nil {
		_ = sender.Close()
		return nil
	}
	defer func() {
		s.hub.ConnectionClosed(context.WithoutCancel(ctx), conn.ID)
		_ = sender.Close()
	}()

	go s.keepAlive(ctx, ws)
	s.readFrames(ctx, ws, conn.ID)
	return nil
}

func (s *Server) readFrames(ctx context.Context, ws *websocket.Conn, id realtime.ConnectionID) {
	pongWait := s.live.PingInterval * 2
	ws.SetReadLimit(s.live.MaxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame wire.ClientFrame
		if err := ws.ReadJSON(&frame); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) && ctx.Err() == nil {
				s.logger.DebugContext(ctx, "live connection read ended", "connection_id", id, "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		s.hub.HandleFrame(ctx, id, frame)
	}
}

func (s *Server) keepAlive(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(s.live.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.live.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

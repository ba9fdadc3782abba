// Package signal is the realtime gateway: it binds each websocket to
// at most one participant identity and relays state transitions to
// every session attached to a room.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pointdeck/internal/app"
	"pointdeck/internal/config"
)

var ErrBackpressure = errors.New("backpressure")

type GatewayController struct {
	cfg    *config.Config
	reg    *app.Registry
	rooms  *app.Lifecycle
	votes  *app.Engine
	policy app.Policy
	joins  *JoinRateLimiter
}

func NewGatewayController(cfg *config.Config, reg *app.Registry, rooms *app.Lifecycle, votes *app.Engine) *GatewayController {
	return &GatewayController{
		cfg:    cfg,
		reg:    reg,
		rooms:  rooms,
		votes:  votes,
		policy: app.DropPolicy{},
		joins:  NewJoinRateLimiter(5, 10*time.Second),
	}
}

type WsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *GatewayController) HandleSession(ctx context.Context, c *gin.Context) {
	sid := app.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	conn := &WsConn{
		conn: ws,
		send: make(chan []byte, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.reg.Bind(sid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

// Package signal adapts websocket connections to the gateway. It owns
// the transport resources: the gateway only ever sees the
// SignalConnection interface.
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

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Options carries the transport knobs from config.
type Options struct {
	ReadLimit    int64
	PingPeriod   time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
	RateBurst    int
	RateWindow   time.Duration
}

type Controller struct {
	gateway *app.Gateway
	limiter *rateLimiter
	opts    Options
}

func NewController(gateway *app.Gateway, opts Options) *Controller {
	return &Controller{
		gateway: gateway,
		limiter: newRateLimiter(opts.RateBurst, opts.RateWindow),
		opts:    opts,
	}
}

type wsSignalConn struct {
	conn *websocket.Conn
	send chan app.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(f app.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
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

// HandleSignal upgrades the request and registers the session. The
// acting user was resolved by the auth middleware before we get here.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	user := domain.User{
		ID:       domain.UserID(c.GetString("user_id")),
		Username: c.GetString("username"),
	}
	sid := domain.NewSessionID()
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", string(user.ID)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.opts.ReadLimit)

	conn := &wsSignalConn{
		conn: ws,
		send: make(chan app.Frame, ctl.opts.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := ctl.gateway.Connect(sid, user, conn, cancel); err != nil {
		// Session ids are freshly minted, so a collision is a logic
		// error in this adapter, not a client problem.
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("session rejected")
		cancel()
		conn.Close()
		return
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, user.ID, conn, cancel)
}

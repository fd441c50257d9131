package storefront

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storefront/internal/application/usecase"
	addressdom "storefront/internal/domain/address"
	"storefront/internal/infra/logging"
	"storefront/internal/platform/live"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

type wsUpgrader = websocket.Upgrader

// newUpgrader accepts the same origins as CORS. Requests without an Origin
// header (non-browser clients) are always accepted.
func newUpgrader(origins []string) wsUpgrader {
	allowed := map[string]struct{}{}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if allowAll || origin == "" {
				return true
			}
			_, ok := allowed[strings.TrimRight(origin, "/")]
			return ok
		},
	}
}

// streamEvent is one frame pushed to a websocket client.
type streamEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// streamClient holds at most one pending frame; a newer value replaces an
// unsent one, so slow clients only ever see the latest state.
type streamClient struct {
	conn *websocket.Conn
	send chan streamEvent
	done chan struct{}
}

func (c *streamClient) offer(ev streamEvent) {
	for {
		select {
		case c.send <- ev:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

// readPump only services control frames; it closes done when the peer goes
// away.
func (c *streamClient) readPump(log *zap.Logger) {
	defer close(c.done)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("[stream] unexpected close", zap.Error(err))
			}
			return
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// serveStream upgrades the request and forwards every value of subscribe
// until the client disconnects.
func serveStream[T any](a *API, w http.ResponseWriter, r *http.Request, kind string, subscribe func(func(T)) live.Subscription) {
	log := logging.FromContext(r.Context(), a.log)

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("[stream] upgrade failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	defer conn.Close()

	c := &streamClient{
		conn: conn,
		send: make(chan streamEvent, 1),
		done: make(chan struct{}),
	}
	sub := subscribe(func(v T) { c.offer(streamEvent{Type: kind, Data: v}) })
	defer sub.Unsubscribe()

	log.Debug("[stream] opened", zap.String("kind", kind))
	go c.readPump(log)
	c.writePump()
	log.Debug("[stream] closed", zap.String("kind", kind))
}

func (a *API) streamCart(w http.ResponseWriter, r *http.Request) {
	serveStream[usecase.CartSnapshot](a, w, r, "cart", current(r).Cart.Subscribe)
}

func (a *API) streamAddresses(w http.ResponseWriter, r *http.Request) {
	serveStream[[]addressdom.Address](a, w, r, "addresses", current(r).Auth.FetchAddresses)
}

package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/pubsub"
)

// ConnectionType defines the type of WebSocket connection.
type ConnectionType int

const (
	// ConnectionTypeHTML is for clients that consume HTML fragments (e.g., HTMX).
	ConnectionTypeHTML ConnectionType = iota
	// ConnectionTypeData is for clients that consume structured data (e.g., JSON).
	ConnectionTypeData
)

func (t ConnectionType) String() string {
	if t == ConnectionTypeHTML {
		return "html"
	}
	return "data"
}

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
)

// Route forwards one bus topic to connected clients of one type.
type Route struct {
	Topic string
	Type  ConnectionType
	// Direct routes deliver only to the connections of the message's UserID.
	Direct bool
	// Build turns the bus message into the frame sent to clients. Returning
	// nil, nil skips the message.
	Build func(ctx context.Context, msg pubsub.Message) ([]byte, error)
}

// Client is one connected socket.
type Client struct {
	UserID   string
	connType ConnectionType
	send     chan []byte
}

type outbound struct {
	userID  string // empty for broadcasts
	payload []byte
	types   map[ConnectionType]bool
}

// Bridge pushes bus messages to WebSocket clients. Clients only listen;
// anything they send is discarded.
type Bridge struct {
	subscriber pubsub.Subscriber
	routes     []Route

	// clients maps user ids to their connections. A user can have several
	// (browser tabs, devices).
	clients map[string][]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	outbound   chan outbound
	done       chan struct{}
	stopOnce   sync.Once
}

// NewBridge creates a Bridge serving routes.
func NewBridge(sub pubsub.Subscriber, routes ...Route) *Bridge {
	return &Bridge{
		subscriber: sub,
		routes:     routes,
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan outbound, 256),
		done:       make(chan struct{}),
	}
}

// Start subscribes every route and runs the bridge until ctx is canceled.
func (b *Bridge) Start(ctx context.Context) error {
	for _, r := range b.routes {
		route := r
		if route.Build == nil {
			return fmt.Errorf("route %q has no builder", route.Topic)
		}
		err := b.subscriber.Subscribe(ctx, route.Topic, func(ctx context.Context, msg pubsub.Message) error {
			return b.forward(ctx, route, msg)
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", route.Topic, err)
		}
	}

	go b.run(ctx)
	slog.Info("WebSocket bridge started", "routes", len(b.routes))
	return nil
}

func (b *Bridge) forward(ctx context.Context, route Route, msg pubsub.Message) error {
	payload, err := route.Build(ctx, msg)
	if err != nil {
		// A frame that cannot be built will not build on redelivery either.
		slog.Error("Failed to build websocket frame", "topic", msg.Topic, "error", err)
		return nil
	}
	if payload == nil {
		return nil
	}
	if route.Direct {
		if msg.UserID == "" {
			return nil
		}
		b.SendDirect(msg.UserID, payload, route.Type)
		return nil
	}
	b.Broadcast(payload, route.Type)
	return nil
}

func (b *Bridge) run(ctx context.Context) {
	defer b.stopOnce.Do(func() { close(b.done) })
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for id, clients := range b.clients {
				for _, c := range clients {
					close(c.send)
				}
				delete(b.clients, id)
			}
			b.mu.Unlock()
			slog.Info("WebSocket bridge stopped")
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client.UserID] = append(b.clients[client.UserID], client)
			b.mu.Unlock()
			slog.Debug("Client registered", "userID", client.UserID, "type", client.connType)

		case client := <-b.unregister:
			b.mu.Lock()
			clients := b.clients[client.UserID]
			for i, c := range clients {
				if c == client {
					b.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
					close(client.send)
					break
				}
			}
			if len(b.clients[client.UserID]) == 0 {
				delete(b.clients, client.UserID)
			}
			b.mu.Unlock()
			slog.Debug("Client unregistered", "userID", client.UserID, "type", client.connType)

		case msg := <-b.outbound:
			b.mu.RLock()
			for userID, clients := range b.clients {
				if msg.userID != "" && msg.userID != userID {
					continue
				}
				for _, client := range clients {
					if !msg.types[client.connType] {
						continue
					}
					select {
					case client.send <- msg.payload:
					default:
						slog.Warn("Client send channel full, dropping message", "userID", client.UserID)
					}
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *Bridge) enqueue(msg outbound) {
	select {
	case b.outbound <- msg:
	case <-b.done:
	}
}

func targets(types []ConnectionType) map[ConnectionType]bool {
	out := make(map[ConnectionType]bool, len(types))
	for _, t := range types {
		out[t] = true
	}
	return out
}

// Broadcast sends a frame to all clients of the given connection types.
func (b *Bridge) Broadcast(payload []byte, connTypes ...ConnectionType) {
	b.enqueue(outbound{payload: payload, types: targets(connTypes)})
}

// SendDirect sends a frame to every connection of one user.
func (b *Bridge) SendDirect(userID string, payload []byte, connTypes ...ConnectionType) {
	b.enqueue(outbound{userID: userID, payload: payload, types: targets(connTypes)})
}

// ClientCount returns the number of open connections.
func (b *Bridge) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, clients := range b.clients {
		n += len(clients)
	}
	return n
}

// Handler upgrades the request and streams frames until the client leaves.
// It must run behind middleware.CurrentUser.
func (b *Bridge) Handler(connType ConnectionType) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := middleware.UserFrom(c)
		if !ok {
			return c.String(http.StatusUnauthorized, "User not authenticated")
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // TODO: check Origin against APP_BASE_URL once the UI is served cross-origin.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return nil
		}
		defer conn.CloseNow()

		client := &Client{UserID: user.ID, connType: connType, send: make(chan []byte, sendBuffer)}
		select {
		case b.register <- client:
		case <-b.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return nil
		}

		ctx := conn.CloseRead(c.Request().Context())
		err = b.writeLoop(ctx, conn, client)

		select {
		case b.unregister <- client:
		case <-b.done:
		}

		switch {
		case err == nil:
			conn.Close(websocket.StatusNormalClosure, "")
		case errors.Is(err, context.Canceled), websocket.CloseStatus(err) != -1:
			slog.Debug("WebSocket closed", "userID", user.ID)
		default:
			slog.Warn("WebSocket write error", "userID", user.ID, "error", err)
		}
		return nil
	}
}

func (b *Bridge) writeLoop(ctx context.Context, conn *websocket.Conn, client *Client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-client.send:
			if !ok {
				return nil
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

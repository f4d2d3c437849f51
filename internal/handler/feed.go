package handler

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/models"

	"github.com/gorilla/websocket"
)

const (
	feedWriteTimeout = 5 * time.Second
	feedBuffer       = 32
)

// feedClient is one websocket connection with its own writer goroutine
type feedClient struct {
	conn *websocket.Conn
	send chan models.CapturedEmail
}

// Feed pushes every newly captured email to the connected websocket clients.
// Only same-origin pages, clients without an Origin header, and the configured origins may
// connect: the feed carries full email content.
type Feed struct {
	upgrader       websocket.Upgrader
	allowedOrigins []string

	mu      sync.Mutex
	clients map[*feedClient]struct{}
}

// NewFeed creates a Feed without clients
func NewFeed(allowedOrigins []string) *Feed {
	f := &Feed{
		allowedOrigins: allowedOrigins,
		clients:        make(map[*feedClient]struct{}),
	}
	f.upgrader = websocket.Upgrader{
		CheckOrigin:     f.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return f
}

func (f *Feed) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range f.allowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}

	logging.Log.WithField("origin", origin).Warn("Rejected feed connection from foreign origin")
	return false
}

// ServeHTTP upgrades the request and keeps the client registered until it disconnects
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &feedClient{conn: conn, send: make(chan models.CapturedEmail, feedBuffer)}

	f.mu.Lock()
	f.clients[client] = struct{}{}
	f.mu.Unlock()

	go client.writeLoop()
	defer f.remove(client)

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish queues email for every client without waiting for the network. Clients whose
// queue is full are dropped.
func (f *Feed) Publish(email models.CapturedEmail) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for client := range f.clients {
		select {
		case client.send <- email:
		default:
			logging.Log.Debug("dropping slow feed client")
			delete(f.clients, client)
			close(client.send)
		}
	}
}

// Clients returns the number of connected clients
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *Feed) remove(client *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.clients[client]; ok {
		delete(f.clients, client)
		close(client.send)
	}
}

// writeLoop sends queued emails until the queue is closed or a write fails
func (c *feedClient) writeLoop() {
	defer c.conn.Close()

	for email := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := c.conn.WriteJSON(email); err != nil {
			logging.Log.WithError(err).Debug("feed write failed")
			return
		}
	}
}

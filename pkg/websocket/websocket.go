package websocketPkg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ShortletAssistant/internal/entity"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var ErrNotConfigured = errors.New("dashboard websocket url is not configured")

// IDashboard pushes escalation events to the host dashboard.
type IDashboard interface {
	PublishEscalation(ctx context.Context, event entity.EscalationEvent) error
	IsConnected() bool
	Close()
}

type dashboardClient struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	log          *logrus.Logger
	pingInterval time.Duration
	writeTimeout time.Duration
	dialTimeout  time.Duration
}

type envelope struct {
	Type string                 `json:"type"`
	Data entity.EscalationEvent `json:"data"`
}

// NewDashboardClient connects lazily; the first publish dials url.
func NewDashboardClient(url string, logger *logrus.Logger) IDashboard {
	return &dashboardClient{
		url:          url,
		log:          logger,
		pingInterval: 30 * time.Second,
		writeTimeout: 5 * time.Second,
		dialTimeout:  10 * time.Second,
	}
}

func (c *dashboardClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *dashboardClient) PublishEscalation(ctx context.Context, event entity.EscalationEvent) error {
	payload, err := jsoniter.Marshal(envelope{Type: "escalation", Data: event})
	if err != nil {
		return fmt.Errorf("failed to encode escalation: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)

	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.dropLocked()
		return fmt.Errorf("failed to publish escalation: %w", err)
	}
	_ = c.conn.SetWriteDeadline(time.Time{})
	return nil
}

func (c *dashboardClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked()
}

func (c *dashboardClient) connectLocked(ctx context.Context) error {
	if c.url == "" {
		return ErrNotConfigured
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.dialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
	})

	c.conn = conn
	c.log.WithField("url", c.url).Info("Connected to host dashboard")

	go c.readLoop(conn)
	go c.keepAlive(conn)
	return nil
}

// readLoop drains control frames so ping handlers run, and notices closes.
func (c *dashboardClient) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.dropLocked()
			}
			c.mu.Unlock()
			return
		}
	}
}

func (c *dashboardClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}
		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
			c.log.WithField("error", err.Error()).Warn("Dashboard ping failed, dropping connection")
			c.dropLocked()
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

func (c *dashboardClient) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

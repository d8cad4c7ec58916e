package ipc

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection represents a single game host talking to the bot.
// Each match gets its own connection, tagged with a session id for logs.
type Connection struct {
	conn     io.ReadWriteCloser
	handlers map[string]Handler
	writeMu  sync.Mutex
	Session  string
}

func NewConnection(conn io.ReadWriteCloser, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		conn:     conn,
		handlers: handlers,
		Session:  uuid.NewString(),
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *Connection) write(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteEnvelope(c.conn, env)
}

// ReadLoop blocks until the connection closes or errors. It owns the conn lifetime
// so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			slog.Info("connection read ended", "session", c.Session, "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type, "session", c.Session)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "session", c.Session, "error", err)
			continue
		}

		if resp != nil {
			if err := c.write(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "session", c.Session, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "session", c.Session)
		}
	}
}

// Close shuts the underlying stream, which ends ReadLoop.
func (c *Connection) Close() error {
	return c.conn.Close()
}

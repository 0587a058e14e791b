package socket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Connection is the part of a duplex connection the router needs. socketio.Conn satisfies it.
type Connection interface {
	ID() string
	Emit(event string, v ...interface{})
}

var (
	ErrMissingUserID        = errors.New("userId is required")
	ErrAlreadyAuthenticated = errors.New("connection is already authenticated")
	ErrConnectionClosed     = errors.New("connection is closed")
)

type connState int

const (
	stateUnauthenticated connState = iota
	stateAuthenticated
	stateClosed
)

type outbound struct {
	event   string
	payload json.RawMessage
}

// member is one live connection bound to a user channel, with its own writer goroutine
type member struct {
	conn    Connection
	userID  string
	state   connState
	mailbox chan outbound
	done    chan struct{}
}

// Router tracks which connections belong to which user channel and fans events out to them
type Router struct {
	logger      *zap.Logger
	mailboxSize int

	mu       sync.RWMutex
	conns    map[string]*member            // connection id -> member
	channels map[string]map[string]*member // user id -> connection id -> member
}

func NewRouter(logger *zap.Logger, mailboxSize int) *Router {
	if mailboxSize <= 0 {
		mailboxSize = 64
	}
	return &Router{
		logger:      logger,
		mailboxSize: mailboxSize,
		conns:       map[string]*member{},
		channels:    map[string]map[string]*member{},
	}
}

// Connect registers a fresh, unauthenticated connection
func (r *Router) Connect(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn.ID()]; ok {
		return
	}
	r.conns[conn.ID()] = &member{conn: conn, state: stateUnauthenticated}
	r.logger.Debug("✅ socket connected", zap.String("connId", conn.ID()))
}

// Authenticate binds a connected, unauthenticated connection to the user's channel.
// Closed connections stay closed.
func (r *Router) Authenticate(conn Connection, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// the transport reports connect before any event, so an unknown id has already been dropped
	m, ok := r.conns[conn.ID()]
	if !ok {
		return ErrConnectionClosed
	}
	switch m.state {
	case stateAuthenticated:
		return ErrAlreadyAuthenticated
	case stateClosed:
		return ErrConnectionClosed
	}

	m.userID = userID
	m.state = stateAuthenticated
	m.mailbox = make(chan outbound, r.mailboxSize)
	m.done = make(chan struct{})
	go r.writeLoop(m)

	if r.channels[userID] == nil {
		r.channels[userID] = map[string]*member{}
	}
	r.channels[userID][conn.ID()] = m

	r.logger.Info("👥 socket joined user channel", zap.String("connId", conn.ID()), zap.String("userId", userID))
	return nil
}

// Push delivers payload to every connection bound to userID. It never blocks on a
// slow connection: when a mailbox is full the event is dropped for that connection.
func (r *Router) Push(userID, event string, payload interface{}) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.channels[userID]
	if len(members) == 0 {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}

	for id, m := range members {
		select {
		case m.mailbox <- outbound{event: event, payload: data}:
		default:
			r.logger.Warn("⚠️ mailbox full, event dropped", zap.String("connId", id), zap.String("userId", userID), zap.String("event", event))
		}
	}
	return nil
}

// Disconnect removes the connection from its channel; durable state is untouched
func (r *Router) Disconnect(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.conns[conn.ID()]
	if !ok {
		return
	}
	delete(r.conns, conn.ID())

	if m.state == stateAuthenticated {
		if set, ok := r.channels[m.userID]; ok {
			delete(set, conn.ID())
			if len(set) == 0 {
				delete(r.channels, m.userID)
			}
		}
		close(m.done)
	}
	m.state = stateClosed
	r.logger.Debug("❌ socket disconnected", zap.String("connId", conn.ID()), zap.String("userId", m.userID))
}

// ConnectionCount returns how many live connections are bound to userID
func (r *Router) ConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[userID])
}

func (r *Router) writeLoop(m *member) {
	for {
		select {
		case <-m.done:
			return
		case out := <-m.mailbox:
			m.conn.Emit(out.event, out.payload)
		}
	}
}

package socket

import (
	"vibin_chat/models"

	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"
)

const namespace = "/"

// NewSocketServer wires the socket.io transport to the router: connections start
// unauthenticated and join their user channel on the "authenticate" event.
func NewSocketServer(router *Router, logger *zap.Logger) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect(namespace, func(c socketio.Conn) error {
		router.Connect(c)
		return nil
	})

	server.OnEvent(namespace, models.EventAuthenticate, func(c socketio.Conn, payload models.AuthenticatePayload) {
		if err := router.Authenticate(c, payload.UserID); err != nil {
			logger.Warn("❌ socket authentication rejected", zap.String("connId", c.ID()), zap.Error(err))
			c.Emit(models.EventError, map[string]string{"error": err.Error()})
			return
		}
		c.Emit(models.EventAuthenticated, map[string]string{"userId": payload.UserID})
	})

	server.OnError(namespace, func(c socketio.Conn, err error) {
		if c == nil {
			logger.Warn("⚠️ socket error", zap.Error(err))
			return
		}
		logger.Warn("⚠️ socket error", zap.String("connId", c.ID()), zap.Error(err))
	})

	server.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		router.Disconnect(c)
		logger.Debug("socket closed", zap.String("connId", c.ID()), zap.String("reason", reason))
	})

	return server
}

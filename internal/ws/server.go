// Package ws provides WebSocket server functionality for client connections.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/DomDom3333/GameFinder/internal/config"
	"github.com/DomDom3333/GameFinder/internal/coordinator"
	"github.com/DomDom3333/GameFinder/internal/hub"
	"github.com/DomDom3333/GameFinder/internal/protocol"
)

// Server handles WebSocket connections.
type Server struct {
	cfg         *config.Config
	hub         *hub.Hub
	coordinator *coordinator.Coordinator
	upgrader    websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, coord *coordinator.Coordinator) *Server {
	return &Server{
		cfg:         cfg,
		hub:         h,
		coordinator: coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Desktop clients connect from arbitrary origins
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection.
func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.coordinator.Disconnect(conn.ID)
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming messages to the coordinator.
func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var baseMsg protocol.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch baseMsg.Type {
	case protocol.TypeCreateSession:
		s.coordinator.CreateSession(conn.ID)
	case protocol.TypeJoinSession:
		var msg protocol.JoinSessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid join_session message")
			return
		}
		s.coordinator.JoinSession(conn.ID, msg)
	case protocol.TypeLeaveSession:
		var msg protocol.LeaveSessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid leave_session message")
			return
		}
		s.coordinator.LeaveSession(conn.ID, msg)
	case protocol.TypeStartSession:
		var msg protocol.StartSessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid start_session message")
			return
		}
		s.coordinator.StartSession(conn.ID, msg)
	case protocol.TypeSwipe:
		var msg protocol.SwipeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid swipe message")
			return
		}
		s.coordinator.Swipe(conn.ID, msg)
	case protocol.TypeEndSession:
		var msg protocol.EndSessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid end_session message")
			return
		}
		s.coordinator.EndSession(conn.ID, msg)
	default:
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "unknown message type: "+baseMsg.Type)
	}
}

// sendError sends an error message directly to a connection.
func (s *Server) sendError(conn *hub.Connection, code, message string) {
	s.hub.Send(conn.ID, protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeError, Ts: time.Now().UnixMilli()},
		Code:        code,
		Message:     message,
	})
}

package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"matchsync-server/internal/domain"
	"matchsync-server/internal/service"
	"matchsync-server/internal/websocket"
	"matchsync-server/pkg/jwt"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	manager        *websocket.Manager
	sessionService *service.SessionService
	jwtSecret      string
	upgrader       ws.Upgrader
}

func NewWebSocketHandler(manager *websocket.Manager, sessionService *service.SessionService, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		manager:        manager,
		sessionService: sessionService,
		jwtSecret:      jwtSecret,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades a viewer window into its session room. The window
// identifies itself with the same session and role parameters its viewer URL
// carries.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
	}

	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateToken(token, h.jwtSecret)
	if err != nil {
		log.Printf("websocket token validation failed: %v", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	userID := claims.UserID

	sessionID := r.URL.Query().Get("session")
	role := domain.DocumentRole(r.URL.Query().Get("role"))
	if sessionID == "" || (role != domain.DocumentRoleProblem && role != domain.DocumentRoleSolution) {
		http.Error(w, "session and role query parameters are required", http.StatusBadRequest)
		return
	}

	if _, err := h.sessionService.GetByID(userID, sessionID); err != nil {
		http.Error(w, "unknown session", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade connection: %v", err)
		return
	}

	client := websocket.NewClient(uuid.New().String(), userID, sessionID, role, conn, h.manager)

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// WebSocketMessageHandler answers messages windows send over an established
// connection. Windows mostly listen; the inbound surface is hello and ping.
type WebSocketMessageHandler struct{}

func NewWebSocketMessageHandler() *WebSocketMessageHandler {
	return &WebSocketMessageHandler{}
}

func (h *WebSocketMessageHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeHello:
		return h.handleHello(client)

	case websocket.TypePing:
		return h.handlePing(client)

	default:
		log.Printf("unknown message type: %s", msg.Type)
	}

	return nil
}

// handleHello answers with the room's current population so a freshly opened
// window knows its peer state without waiting for the next register broadcast.
func (h *WebSocketMessageHandler) handleHello(client *websocket.Client) error {
	msg, err := websocket.NewMessage(websocket.TypePeerStatus, &websocket.PeerStatusPayload{
		SessionID:        client.SessionID,
		ConnectedWindows: client.Manager.SessionConnections(client.SessionID),
	})
	if err != nil {
		return err
	}

	msgBytes, _ := json.Marshal(msg)
	client.Send <- msgBytes

	return nil
}

func (h *WebSocketMessageHandler) handlePing(client *websocket.Client) error {
	pongMsg, err := websocket.NewMessage(websocket.TypePong, nil)
	if err != nil {
		return err
	}

	pongBytes, _ := json.Marshal(pongMsg)
	client.Send <- pongBytes

	return nil
}

package websocket

import (
	"encoding/json"
	"time"

	"matchsync-server/internal/domain"
)

type MessageType string

const (
	TypeHello        MessageType = "hello"
	TypePeerStatus   MessageType = "peer_status"
	TypeGroupCreated MessageType = "group_created"
	TypeGroupDeleted MessageType = "group_deleted"
	TypeLinkCreated  MessageType = "link_created"
	TypeLinkRemoved  MessageType = "link_removed"
	TypeSyncRequired MessageType = "sync_required"
	TypePing         MessageType = "ping"
	TypePong         MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// PeerStatusPayload tells a window how many windows its session currently
// has connected; the connectivity tracker turns that into an advisory state.
type PeerStatusPayload struct {
	SessionID        string `json:"session_id"`
	ConnectedWindows int    `json:"connected_windows"`
}

type GroupEventPayload struct {
	GroupID     string              `json:"group_id"`
	DocumentID  string              `json:"document_id"`
	Role        domain.DocumentRole `json:"role"`
	DisplayName string              `json:"display_name,omitempty"`
	PageIndex   int                 `json:"page_index"`
}

type LinkEventPayload struct {
	ProblemGroupID  string `json:"problem_group_id"`
	SolutionGroupID string `json:"solution_group_id,omitempty"`
}

// SyncRequiredPayload nudges both windows to re-check status after a
// server-side change; polling remains the source of truth.
type SyncRequiredPayload struct {
	Reason string `json:"reason"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pokervariants/internal/game"
)

// MessageType tags the WebSocket envelope
type MessageType string

const (
	// client to server
	MsgJoinTable  MessageType = "join_table"
	MsgLeaveTable MessageType = "leave_table"
	MsgAction     MessageType = "action"
	MsgGetState   MessageType = "get_state"

	// server to client
	MsgError         MessageType = "error"
	MsgJoined        MessageType = "joined"
	MsgState         MessageType = "state"
	MsgEvents        MessageType = "events"
	MsgActionRequest MessageType = "action_request"
	MsgHandResult    MessageType = "hand_result"
)

// Message is the WebSocket envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in a stamped envelope
func NewMessage(t MessageType, data any) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: t, Data: raw, Timestamp: time.Now()}, nil
}

// JoinTableData seats a player
type JoinTableData struct {
	Table    string `json:"table"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
	BuyIn    int    `json:"buyIn"`
}

// LeaveTableData frees the player's seat
type LeaveTableData struct {
	Table string `json:"table"`
}

// ActionData is a player decision
type ActionData struct {
	Table   string           `json:"table"`
	Action  game.ActionType  `json:"action"`
	Amount  int              `json:"amount,omitempty"`
	Cards   []int            `json:"cards,omitempty"`
	Value   string           `json:"value,omitempty"`
	Subsets map[string][]int `json:"subsets,omitempty"`
}

// GetStateData requests a state snapshot
type GetStateData struct {
	Table string `json:"table"`
}

// ErrorData reports a rejected request
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JoinedData confirms a seat
type JoinedData struct {
	Table string `json:"table"`
	Seat  int    `json:"seat"`
}

// StateData carries a per-player redacted snapshot
type StateData struct {
	Table string             `json:"table"`
	State game.GameStateView `json:"state"`
}

// EventsData carries redacted hand events
type EventsData struct {
	Table  string       `json:"table"`
	Events []game.Event `json:"events"`
}

// ActionRequestData prompts the current actor, with their legal options and
// the response deadline
type ActionRequestData struct {
	Table    string              `json:"table"`
	Options  []game.ActionOption `json:"options"`
	Deadline time.Time           `json:"deadline"`
}

// HandResultData publishes the settled hand
type HandResultData struct {
	Table  string           `json:"table"`
	Result *game.HandResult `json:"result"`
}

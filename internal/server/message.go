package server

import (
	"encoding/json"
	"time"

	"github.com/wolfpit/wolfpit/internal/game"
)

// Message represents the base WebSocket message structure.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type JoinMatchData struct {
	MatchID string `json:"matchId"`
}

type LeaveMatchData struct {
	MatchID string `json:"matchId"`
}

// VoteData carries a vote during a voting phase or a stated suspicion
// during free talk.
type VoteData struct {
	MatchID string `json:"matchId"`
	Target  string `json:"target"`
}

type WolfChatData struct {
	MatchID string `json:"matchId"`
	Text    string `json:"text"`
}

type NightActionData struct {
	MatchID string `json:"matchId"`
	Action  string `json:"action"` // "divine" or "guard"
	Target  string `json:"target"`
}

type AttackData struct {
	MatchID string `json:"matchId"`
	Target  string `json:"target"`
}

type LastWillData struct {
	MatchID string `json:"matchId"`
	Text    string `json:"text"`
}

type AddBotsData struct {
	MatchID string `json:"matchId"`
	Count   int    `json:"count,omitempty"` // 0 fills the roster
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MatchInfo struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Phase       string `json:"phase"`
}

type MatchListData struct {
	Matches []MatchInfo `json:"matches"`
}

type MatchJoinedData struct {
	MatchID string   `json:"matchId"`
	Seat    int      `json:"seat"`
	Players []string `json:"players"`
}

type MatchLeftData struct {
	MatchID string `json:"matchId"`
}

type BotsAddedData struct {
	MatchID string   `json:"matchId"`
	Names   []string `json:"names"`
}

// GameEventData wraps an engine notification for the wire. Event names
// the notification kind; Data is the notification struct itself.
type GameEventData struct {
	Event game.NotificationType `json:"event"`
	Data  interface{}           `json:"data"`
}

// NewEventMessage wraps a notification in the wire envelope.
func NewEventMessage(n game.Notification) (*Message, error) {
	return NewMessage(MessageTypeGameEvent, GameEventData{Event: n.Type(), Data: n})
}

package server

// MessageType represents a WebSocket message type with type safety.
type MessageType string

// WebSocket message type constants used by the client-server protocol.
const (
	// Client to server messages
	MessageTypeAuth        MessageType = "auth"
	MessageTypeJoinMatch   MessageType = "join_match"
	MessageTypeLeaveMatch  MessageType = "leave_match"
	MessageTypeListMatches MessageType = "list_matches"
	MessageTypeVote        MessageType = "vote"
	MessageTypeWolfChat    MessageType = "wolf_chat"
	MessageTypeNightAction MessageType = "night_action"
	MessageTypeAttack      MessageType = "attack"
	MessageTypeLastWill    MessageType = "last_will"
	MessageTypeAddBots     MessageType = "add_bots"

	// Server to client messages
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeMatchJoined  MessageType = "match_joined"
	MessageTypeMatchLeft    MessageType = "match_left"
	MessageTypeMatchList    MessageType = "match_list"
	MessageTypeBotsAdded    MessageType = "bots_added"
	MessageTypeGameEvent    MessageType = "game_event"
	MessageTypeError        MessageType = "error"
)

// String returns the string representation of the message type.
func (mt MessageType) String() string {
	return string(mt)
}

package types

// ChatMessage is one append-only entry of a chat's message log.
// ClientMessageID is a client-supplied idempotency key, empty when absent;
// at most one row exists per (chat, sender, client_message_id).
type ChatMessage struct {
	ID              string `json:"id" db:"id"`
	ChatID          string `json:"chat_id" db:"chat_id"`
	SenderID        string `json:"sender_id" db:"sender_id"`
	Message         string `json:"message" db:"message"`
	ClientMessageID string `json:"client_message_id" db:"client_message_id"`
	CreatedAt       int64  `json:"created_at" db:"created_at"`
}

package protocol

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	ChatTopicPrefix = "/chat/"
	// RosterTopic is the fixed broadcast group for connected counsellors.
	RosterTopic = "/counsellor/roster"
)

func GenChatTopic(chatID string) string {
	return fmt.Sprintf("%s%s", ChatTopicPrefix, chatID)
}

func GetChatID(topic string) string {
	return filepath.Base(topic)
}

func IsChatTopic(topic string) bool {
	return strings.HasPrefix(topic, ChatTopicPrefix)
}

const (
	EVENT_ACK           = "ack"
	EVENT_MESSAGE       = "message"
	EVENT_STATUS_UPDATE = "chat_status_update"
	EVENT_ERROR         = "error"
)

const (
	ACK_STATUS_SENT      = "sent"
	ACK_STATUS_DUPLICATE = "duplicate"
)

// ClientFrame is the only inbound frame shape accepted on a chat connection.
type ClientFrame struct {
	Message         string `json:"message"`
	ClientMessageID string `json:"client_message_id"`
}

// AckFrame confirms receipt to the originating connection only.
// MessageID is null for duplicates: the original delivery already happened.
type AckFrame struct {
	Type            string  `json:"type"`
	Status          string  `json:"status"`
	ClientMessageID string  `json:"client_message_id,omitempty"`
	MessageID       *string `json:"message_id"`
}

func NewAckFrame(status, clientMessageID string, messageID *string) AckFrame {
	return AckFrame{
		Type:            EVENT_ACK,
		Status:          status,
		ClientMessageID: clientMessageID,
		MessageID:       messageID,
	}
}

type MessageEvent struct {
	Type            string `json:"type"`
	Message         string `json:"message"`
	SenderID        string `json:"sender_id"`
	SenderUsername  string `json:"sender_username"`
	IsRequester     bool   `json:"is_requester"`
	Timestamp       int64  `json:"timestamp"`
	MessageID       string `json:"message_id"`
	ClientMessageID string `json:"client_message_id,omitempty"`
}

type StatusEvent struct {
	Type        string `json:"type"`
	SessionID   string `json:"session_id"`
	NewStatus   string `json:"new_status"`
	RequesterID string `json:"requester_id"`
	AssigneeID  string `json:"assignee_id,omitempty"`
}

type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewErrorFrame(msg string) ErrorFrame {
	return ErrorFrame{Type: EVENT_ERROR, Error: msg}
}

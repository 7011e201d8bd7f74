package protocol

import (
	"encoding/json"
	"testing"
)

func TestChatTopic(t *testing.T) {
	topic := GenChatTopic("12345")
	if !IsChatTopic(topic) {
		t.Fatal("generated topic should be recognized as a chat topic")
	}
	if GetChatID(topic) != "12345" {
		t.Fatalf("unexpected chat id from topic: %s", GetChatID(topic))
	}
	if IsChatTopic(RosterTopic) {
		t.Fatal("roster topic must not match chat topics")
	}
}

func TestAckFrameDuplicateHasNullMessageID(t *testing.T) {
	raw, err := json.Marshal(NewAckFrame(ACK_STATUS_DUPLICATE, "c1", nil))
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["status"] != ACK_STATUS_DUPLICATE {
		t.Fatalf("unexpected status: %v", decoded["status"])
	}
	if v, ok := decoded["message_id"]; !ok || v != nil {
		t.Fatalf("duplicate ack must carry a null message_id, got %v", v)
	}
}

func TestAckFrameSent(t *testing.T) {
	id := "987"
	raw, err := json.Marshal(NewAckFrame(ACK_STATUS_SENT, "c1", &id))
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["message_id"] != "987" {
		t.Fatalf("unexpected message_id: %v", decoded["message_id"])
	}
	if decoded["client_message_id"] != "c1" {
		t.Fatalf("unexpected client_message_id: %v", decoded["client_message_id"])
	}
}

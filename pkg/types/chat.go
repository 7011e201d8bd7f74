package types

import "time"

type ChatStatus string

const (
	CHAT_STATUS_QUEUED    ChatStatus = "queued"
	CHAT_STATUS_ACTIVE    ChatStatus = "active"
	CHAT_STATUS_INACTIVE  ChatStatus = "inactive"
	CHAT_STATUS_COMPLETED ChatStatus = "completed"
	CHAT_STATUS_CANCELLED ChatStatus = "cancelled"
)

func (s ChatStatus) IsTerminal() bool {
	return s == CHAT_STATUS_COMPLETED || s == CHAT_STATUS_CANCELLED
}

const (
	// RATE_PER_MINUTE is the amount debited per billable minute, in wallet units.
	RATE_PER_MINUTE = int64(1)
	// MAX_MESSAGE_LENGTH is the maximum accepted message size after trimming.
	MAX_MESSAGE_LENGTH = 5000

	CHAT_INACTIVE_AFTER   = 5 * time.Minute
	CHAT_AUTO_CLOSE_AFTER = 60 * time.Minute
	// CHAT_DUPLICATE_WINDOW is the fallback dedup window for retried sends
	// that carry no client message id.
	CHAT_DUPLICATE_WINDOW = 2 * time.Second
)

// Chat is one counselling conversation between a member (the billed party)
// and a counsellor. Timestamps are unix seconds, 0 means unset.
type Chat struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"user_id" db:"user_id"`
	CounsellorID     string     `json:"counsellor_id" db:"counsellor_id"`
	Status           ChatStatus `json:"status" db:"status"`
	CreatedAt        int64      `json:"created_at" db:"created_at"`
	StartedAt        int64      `json:"started_at" db:"started_at"`
	EndedAt          int64      `json:"ended_at" db:"ended_at"`
	LastUserActivity int64      `json:"last_user_activity" db:"last_user_activity"`

	BilledAmount       int64 `json:"billed_amount" db:"billed_amount"`
	DurationMinutes    int64 `json:"duration_minutes" db:"duration_minutes"`
	IsBilled           bool  `json:"is_billed" db:"is_billed"`
	BillingProcessedAt int64 `json:"billing_processed_at" db:"billing_processed_at"`

	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

func (c *Chat) IsParty(userID string) bool {
	return c.UserID == userID || (c.CounsellorID != "" && c.CounsellorID == userID)
}

type ListChatOptions struct {
	UserID       string
	CounsellorID string
	Status       *ChatStatus
	Unassigned   bool
}

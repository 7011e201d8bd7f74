package v1

import (
	"time"

	"github.com/INDUS0007/soul/pkg/types"
)

// TransitionResult describes what a single message did to the chat lifecycle.
type TransitionResult struct {
	// Activated means the chat entered the active state because of this
	// message, either fresh from the queue or reopened after closure.
	Activated bool
	// AutoClosed means the sender came back after the hard idle limit and
	// the chat was settled as completed. The message is still appended.
	AutoClosed bool
	// SilentReopen means an inactive chat went back to active without a
	// roster notification.
	SilentReopen bool
	// NeedsAssignee means the chat left the queue without a counsellor and
	// the caller should try to assign one.
	NeedsAssignee bool
}

// ApplyRequesterMessage mutates chat in place for a message sent by the
// member. The order matters: the hard idle limit is checked against the
// previous activity timestamp before any revival path runs.
func ApplyRequesterMessage(chat *types.Chat, now time.Time) TransitionResult {
	var res TransitionResult

	prev := chat.LastUserActivity
	ts := now.Unix()
	chat.LastUserActivity = ts

	switch {
	case chat.Status == types.CHAT_STATUS_ACTIVE && prev > 0 && now.Sub(time.Unix(prev, 0)) > types.CHAT_AUTO_CLOSE_AFTER:
		chat.Status = types.CHAT_STATUS_COMPLETED
		if chat.EndedAt == 0 {
			chat.EndedAt = ts
		}
		if chat.StartedAt == 0 {
			chat.StartedAt = ts
		}
		res.AutoClosed = true

	case chat.Status == types.CHAT_STATUS_INACTIVE && prev > 0 && now.Sub(time.Unix(prev, 0)) > types.CHAT_INACTIVE_AFTER:
		chat.Status = types.CHAT_STATUS_ACTIVE
		chat.EndedAt = 0
		res.SilentReopen = true

	case chat.Status != types.CHAT_STATUS_ACTIVE:
		if chat.Status == types.CHAT_STATUS_QUEUED {
			res.NeedsAssignee = chat.CounsellorID == ""
		}
		chat.Status = types.CHAT_STATUS_ACTIVE
		chat.EndedAt = 0
		if chat.StartedAt == 0 {
			chat.StartedAt = ts
		}
		res.Activated = true
	}

	return res
}

// ApplyAssigneeMessage mutates chat for a message sent by the counsellor.
// Counsellor traffic never refreshes the member activity clock; it only
// surfaces a lapsed member by parking the chat as inactive.
func ApplyAssigneeMessage(chat *types.Chat, now time.Time) TransitionResult {
	var res TransitionResult

	if chat.Status == types.CHAT_STATUS_ACTIVE && chat.LastUserActivity > 0 &&
		now.Sub(time.Unix(chat.LastUserActivity, 0)) > types.CHAT_INACTIVE_AFTER {
		chat.Status = types.CHAT_STATUS_INACTIVE
		if chat.EndedAt == 0 {
			chat.EndedAt = chat.LastUserActivity + int64(types.CHAT_INACTIVE_AFTER/time.Second)
		}
	}

	return res
}

// ApplySweep parks an active chat whose member went silent past the window.
// Used by the background sweeper, same rule as the counsellor path.
func ApplySweep(chat *types.Chat, now time.Time) bool {
	if chat.Status != types.CHAT_STATUS_ACTIVE || chat.LastUserActivity == 0 {
		return false
	}
	if now.Sub(time.Unix(chat.LastUserActivity, 0)) <= types.CHAT_INACTIVE_AFTER {
		return false
	}
	chat.Status = types.CHAT_STATUS_INACTIVE
	if chat.EndedAt == 0 {
		chat.EndedAt = chat.LastUserActivity + int64(types.CHAT_INACTIVE_AFTER/time.Second)
	}
	return true
}

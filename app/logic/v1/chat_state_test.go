package v1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/INDUS0007/soul/pkg/types"
)

func TestRequesterMessageActivatesQueuedChat(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{
		ID:     "c1",
		UserID: "u1",
		Status: types.CHAT_STATUS_QUEUED,
	}

	res := ApplyRequesterMessage(chat, now)

	assert.True(t, res.Activated)
	assert.True(t, res.NeedsAssignee)
	assert.Equal(t, types.CHAT_STATUS_ACTIVE, chat.Status)
	assert.Equal(t, now.Unix(), chat.StartedAt)
	assert.Equal(t, now.Unix(), chat.LastUserActivity)
}

func TestRequesterMessageQueuedWithCounsellorKeepsAssignee(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{
		ID:           "c1",
		UserID:       "u1",
		CounsellorID: "co1",
		Status:       types.CHAT_STATUS_QUEUED,
	}

	res := ApplyRequesterMessage(chat, now)

	assert.True(t, res.Activated)
	assert.False(t, res.NeedsAssignee)
}

func TestRequesterMessageWithinWindowKeepsActive(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{
		Status:           types.CHAT_STATUS_ACTIVE,
		StartedAt:        now.Add(-time.Minute * 10).Unix(),
		LastUserActivity: now.Add(-time.Minute * 2).Unix(),
	}

	res := ApplyRequesterMessage(chat, now)

	assert.False(t, res.Activated)
	assert.False(t, res.AutoClosed)
	assert.Equal(t, types.CHAT_STATUS_ACTIVE, chat.Status)
	assert.Equal(t, now.Unix(), chat.LastUserActivity)
}

func TestRequesterMessageAutoClosesAfterHardLimit(t *testing.T) {
	now := time.Now()
	last := now.Add(-time.Minute * 61)
	chat := &types.Chat{
		Status:           types.CHAT_STATUS_ACTIVE,
		StartedAt:        now.Add(-time.Hour * 2).Unix(),
		LastUserActivity: last.Unix(),
	}

	res := ApplyRequesterMessage(chat, now)

	assert.True(t, res.AutoClosed)
	assert.False(t, res.Activated)
	assert.Equal(t, types.CHAT_STATUS_COMPLETED, chat.Status)
	assert.Equal(t, now.Unix(), chat.EndedAt)
}

func TestRequesterMessageReopensInactiveSilently(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{
		Status:           types.CHAT_STATUS_INACTIVE,
		StartedAt:        now.Add(-time.Hour).Unix(),
		EndedAt:          now.Add(-time.Minute * 5).Unix(),
		LastUserActivity: now.Add(-time.Minute * 10).Unix(),
	}

	res := ApplyRequesterMessage(chat, now)

	assert.True(t, res.SilentReopen)
	assert.False(t, res.Activated)
	assert.Equal(t, types.CHAT_STATUS_ACTIVE, chat.Status)
	assert.Zero(t, chat.EndedAt)
}

func TestRequesterMessageReactivatesCompletedChat(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{
		Status:           types.CHAT_STATUS_COMPLETED,
		StartedAt:        now.Add(-time.Hour).Unix(),
		EndedAt:          now.Add(-time.Minute * 30).Unix(),
		LastUserActivity: now.Add(-time.Minute * 30).Unix(),
	}

	res := ApplyRequesterMessage(chat, now)

	assert.True(t, res.Activated)
	assert.Equal(t, types.CHAT_STATUS_ACTIVE, chat.Status)
	assert.Zero(t, chat.EndedAt)
}

func TestAssigneeMessageParksLapsedMember(t *testing.T) {
	now := time.Now()
	last := now.Add(-time.Minute * 7)
	chat := &types.Chat{
		Status:           types.CHAT_STATUS_ACTIVE,
		StartedAt:        now.Add(-time.Hour).Unix(),
		LastUserActivity: last.Unix(),
	}

	ApplyAssigneeMessage(chat, now)

	assert.Equal(t, types.CHAT_STATUS_INACTIVE, chat.Status)
	// 结束时间回溯到窗口边界，而不是咨询师发言时刻
	assert.Equal(t, last.Unix()+300, chat.EndedAt)
}

func TestAssigneeMessageDoesNotTouchActivityClock(t *testing.T) {
	now := time.Now()
	last := now.Add(-time.Minute * 2).Unix()
	chat := &types.Chat{
		Status:           types.CHAT_STATUS_ACTIVE,
		LastUserActivity: last,
	}

	ApplyAssigneeMessage(chat, now)

	assert.Equal(t, types.CHAT_STATUS_ACTIVE, chat.Status)
	assert.Equal(t, last, chat.LastUserActivity)
}

func TestSweepParksSilentChat(t *testing.T) {
	now := time.Now()
	last := now.Add(-time.Minute * 6)
	chat := &types.Chat{
		Status:           types.CHAT_STATUS_ACTIVE,
		LastUserActivity: last.Unix(),
	}

	assert.True(t, ApplySweep(chat, now))
	assert.Equal(t, types.CHAT_STATUS_INACTIVE, chat.Status)
	assert.Equal(t, last.Unix()+300, chat.EndedAt)

	// 再扫一次不应有变化
	assert.False(t, ApplySweep(chat, now))
}

func TestNotifyRosterOnlyOnActivation(t *testing.T) {
	assert.True(t, (&SubmitMessageResult{Activated: true}).NotifyRoster())

	// 自动关闭、普通消息、静默恢复都不通知大厅
	assert.False(t, (&SubmitMessageResult{AutoClosed: true}).NotifyRoster())
	assert.False(t, (&SubmitMessageResult{}).NotifyRoster())
	assert.False(t, (&SubmitMessageResult{Duplicate: true}).NotifyRoster())
}

func TestSweepIgnoresRecentActivity(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{
		Status:           types.CHAT_STATUS_ACTIVE,
		LastUserActivity: now.Add(-time.Minute).Unix(),
	}

	assert.False(t, ApplySweep(chat, now))
	assert.Equal(t, types.CHAT_STATUS_ACTIVE, chat.Status)
}

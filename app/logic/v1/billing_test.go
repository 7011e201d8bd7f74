package v1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/INDUS0007/soul/pkg/types"
)

func TestElapsedMinutesRoundsUp(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{
		StartedAt: now.Add(-time.Second * 90).Unix(),
		EndedAt:   now.Unix(),
	}

	assert.Equal(t, int64(2), ElapsedMinutes(chat, now))
}

func TestElapsedMinutesMinimumOneWhenClosed(t *testing.T) {
	now := time.Now()
	started := now.Add(-time.Second * 30)
	chat := &types.Chat{
		StartedAt: started.Unix(),
		EndedAt:   started.Unix(), // 秒级落库，同一秒开始结束
	}

	assert.Equal(t, int64(1), ElapsedMinutes(chat, now))
}

func TestElapsedMinutesNeverStarted(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{EndedAt: now.Unix()}

	assert.Zero(t, ElapsedMinutes(chat, now))
	assert.Zero(t, AmountOwed(chat, now))
}

func TestElapsedMinutesOpenChatAccruesAgainstNow(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{
		StartedAt: now.Add(-time.Minute * 10).Unix(),
	}

	assert.Equal(t, int64(10), ElapsedMinutes(chat, now))
	assert.Equal(t, int64(10)*types.RATE_PER_MINUTE, AmountOwed(chat, now))
}

func TestElapsedMinutesExactBoundary(t *testing.T) {
	now := time.Now()
	chat := &types.Chat{
		StartedAt: now.Add(-time.Minute * 5).Unix(),
		EndedAt:   now.Unix(),
	}

	assert.Equal(t, int64(5), ElapsedMinutes(chat, now))
}

package store

import (
	"context"
	"time"

	"github.com/INDUS0007/soul/pkg/types"
)

type ChatStore interface {
	Create(ctx context.Context, data types.Chat) error
	GetChat(ctx context.Context, chatID string) (*types.Chat, error)
	// GetChatForUpdate locks the chat row for the duration of the surrounding
	// transaction. All mutating paths go through this lock.
	GetChatForUpdate(ctx context.Context, chatID string) (*types.Chat, error)
	Update(ctx context.Context, data *types.Chat) error
	// TouchUserActivity only bumps last_user_activity, safe to call outside
	// the row lock without clobbering concurrent billing writes.
	TouchUserActivity(ctx context.Context, chatID string, ts int64) error
	List(ctx context.Context, opts types.ListChatOptions, page, pageSize uint64) ([]types.Chat, error)
	Total(ctx context.Context, opts types.ListChatOptions) (int64, error)
	ListActiveSilentSince(ctx context.Context, before time.Time, limit uint64) ([]string, error)
	ListActiveStarted(ctx context.Context, limit uint64) ([]string, error)
	ListUnbilledCompleted(ctx context.Context, limit uint64) ([]string, error)
	Delete(ctx context.Context, chatID string) error
}

type ChatMessageStore interface {
	Create(ctx context.Context, data types.ChatMessage) error
	GetByClientMessageID(ctx context.Context, chatID, senderID, clientMessageID string) (*types.ChatMessage, error)
	GetRecentSameText(ctx context.Context, chatID, senderID, text string, since int64) (*types.ChatMessage, error)
	ListMessages(ctx context.Context, chatID string, page, pageSize uint64) ([]types.ChatMessage, error)
	Total(ctx context.Context, chatID string) (int64, error)
	DeleteChatMessages(ctx context.Context, chatID string) error
}

type WalletStore interface {
	Create(ctx context.Context, data types.Wallet) error
	GetWallet(ctx context.Context, userID string) (*types.Wallet, error)
	// GetWalletForUpdate locks the wallet row. Callers holding a chat lock
	// always take the chat row first, then the wallet row.
	GetWalletForUpdate(ctx context.Context, userID string) (*types.Wallet, error)
	UpdateBalance(ctx context.Context, userID string, balance int64) error
}

type WalletTransactionStore interface {
	Create(ctx context.Context, data types.WalletTransaction) error
	ListByUser(ctx context.Context, userID string, page, pageSize uint64) ([]types.WalletTransaction, error)
}

type UserStore interface {
	Create(ctx context.Context, data types.User) error
	GetUser(ctx context.Context, userID string) (*types.User, error)
	// FirstCounsellor returns any counsellor account, no ranking.
	FirstCounsellor(ctx context.Context) (*types.User, error)
}

type AccessTokenStore interface {
	Create(ctx context.Context, data types.AccessToken) error
	GetAccessToken(ctx context.Context, token string) (*types.AccessToken, error)
	Delete(ctx context.Context, userID, token string) error
}

type AppointmentStore interface {
	Create(ctx context.Context, data types.Appointment) error
	GetUpcoming(ctx context.Context, userID, counsellorID string) (*types.Appointment, error)
	MarkInProgress(ctx context.Context, id string, actualStartTime int64) error
}

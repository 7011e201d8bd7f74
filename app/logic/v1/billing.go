package v1

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/INDUS0007/soul/app/core"
	"github.com/INDUS0007/soul/pkg/types"
	"github.com/INDUS0007/soul/pkg/utils"
)

// ElapsedMinutes returns the billable minutes for a chat. Partial minutes
// round up. A closed chat is always worth at least one minute, an open one
// accrues against now.
func ElapsedMinutes(chat *types.Chat, now time.Time) int64 {
	if chat.StartedAt == 0 {
		return 0
	}

	end := chat.EndedAt
	if end == 0 {
		end = now.Unix()
	}

	secs := end - chat.StartedAt
	if secs < 0 {
		secs = 0
	}

	minutes := secs / 60
	if secs%60 != 0 {
		minutes++
	}
	if chat.EndedAt != 0 && minutes < 1 {
		minutes = 1
	}
	return minutes
}

func AmountOwed(chat *types.Chat, now time.Time) int64 {
	return ElapsedMinutes(chat, now) * types.RATE_PER_MINUTE
}

type BillingLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewBillingLogic(ctx context.Context, core *core.Core) *BillingLogic {
	return &BillingLogic{
		ctx:  ctx,
		core: core,
	}
}

// Settle finalizes billing for a closed chat. Must run inside the caller's
// transaction with the chat row already locked. Returns whether billing
// completed. On insufficient balance the closure stands, only the duration
// is recorded and the chat stays unbilled for a later retry.
func (l *BillingLogic) Settle(ctx context.Context, chat *types.Chat) (bool, error) {
	if chat.IsBilled {
		return true, nil
	}

	now := time.Now()
	minutes := ElapsedMinutes(chat, now)
	owed := minutes * types.RATE_PER_MINUTE

	// 从未开始过的会话按 0 结算
	if chat.StartedAt == 0 {
		chat.DurationMinutes = 0
		chat.IsBilled = true
		chat.BillingProcessedAt = now.Unix()
		if err := l.core.Store().ChatStore().Update(ctx, chat); err != nil {
			return false, err
		}
		return true, nil
	}

	delta := owed - chat.BilledAmount
	if delta < 0 {
		delta = 0
	}

	if delta > 0 {
		ok, err := l.debit(ctx, chat, delta, fmt.Sprintf("chat %s settlement", chat.ID))
		if err != nil {
			return false, err
		}
		if !ok {
			chat.DurationMinutes = minutes
			if err := l.core.Store().ChatStore().Update(ctx, chat); err != nil {
				return false, err
			}
			l.core.Metrics().BillingDebitInc("insufficient")
			slog.Warn("chat settlement deferred, insufficient balance",
				slog.String("chat_id", chat.ID), slog.String("user_id", chat.UserID), slog.Int64("owed", owed))
			return false, nil
		}
	}

	chat.BilledAmount = owed
	chat.DurationMinutes = minutes
	chat.IsBilled = true
	chat.BillingProcessedAt = now.Unix()
	if err := l.core.Store().ChatStore().Update(ctx, chat); err != nil {
		return false, err
	}
	l.core.Metrics().BillingDebitInc("settled")
	return true, nil
}

// Accrue charges an active chat for the minutes elapsed since the last
// accrual. Never marks the chat billed. Must run inside a transaction with
// the chat row locked.
func (l *BillingLogic) Accrue(ctx context.Context, chat *types.Chat) error {
	if chat.IsBilled || chat.Status != types.CHAT_STATUS_ACTIVE || chat.StartedAt == 0 {
		return nil
	}

	now := time.Now()
	owed := AmountOwed(chat, now)
	delta := owed - chat.BilledAmount
	if delta <= 0 {
		return nil
	}

	ok, err := l.debit(ctx, chat, delta, fmt.Sprintf("chat %s accrual", chat.ID))
	if err != nil {
		return err
	}
	if !ok {
		// 余额不足时跳过，结算阶段兜底
		l.core.Metrics().BillingDebitInc("insufficient")
		return nil
	}

	chat.BilledAmount = owed
	chat.DurationMinutes = ElapsedMinutes(chat, now)
	if err := l.core.Store().ChatStore().Update(ctx, chat); err != nil {
		return err
	}
	l.core.Metrics().BillingDebitInc("accrued")
	return nil
}

// debit locks the wallet and applies the charge. Returns false without an
// error when the balance cannot cover the amount.
func (l *BillingLogic) debit(ctx context.Context, chat *types.Chat, amount int64, desc string) (bool, error) {
	wallet, err := l.lockWallet(ctx, chat.UserID)
	if err != nil {
		return false, err
	}

	if wallet.Balance < amount {
		return false, nil
	}

	balanceAfter := wallet.Balance - amount
	if err = l.core.Store().WalletStore().UpdateBalance(ctx, chat.UserID, balanceAfter); err != nil {
		return false, err
	}

	err = l.core.Store().WalletTransactionStore().Create(ctx, types.WalletTransaction{
		ID:           utils.GenUniqIDStr(),
		UserID:       chat.UserID,
		ChatID:       chat.ID,
		Type:         types.WALLET_TRANSACTION_DEBIT,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Description:  desc,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *BillingLogic) lockWallet(ctx context.Context, userID string) (*types.Wallet, error) {
	wallet, err := l.core.Store().WalletStore().GetWalletForUpdate(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	if err = l.core.Store().WalletStore().Create(ctx, types.Wallet{UserID: userID}); err != nil {
		return nil, err
	}
	return l.core.Store().WalletStore().GetWalletForUpdate(ctx, userID)
}

// RetrySettlements re-runs billing for completed chats left unbilled by an
// earlier insufficient balance.
func (l *BillingLogic) RetrySettlements(limit uint64) error {
	ids, err := l.core.Store().ChatStore().ListUnbilledCompleted(l.ctx, limit)
	if err != nil {
		return err
	}

	for _, id := range ids {
		err = l.core.Transaction(l.ctx, func(ctx context.Context) error {
			chat, err := l.core.Store().ChatStore().GetChatForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if chat.IsBilled || !chat.Status.IsTerminal() {
				return nil
			}
			_, err = l.Settle(ctx, chat)
			return err
		})
		if err != nil {
			slog.Error("billing retry failed", slog.String("chat_id", id), slog.String("error", err.Error()))
		}
	}
	return nil
}

// AccrueActive charges all running chats for elapsed time so a member
// cannot ride a long session past their balance unnoticed.
func (l *BillingLogic) AccrueActive(limit uint64) error {
	ids, err := l.core.Store().ChatStore().ListActiveStarted(l.ctx, limit)
	if err != nil {
		return err
	}

	for _, id := range ids {
		err = l.core.Transaction(l.ctx, func(ctx context.Context) error {
			chat, err := l.core.Store().ChatStore().GetChatForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return l.Accrue(ctx, chat)
		})
		if err != nil {
			slog.Error("billing accrual failed", slog.String("chat_id", id), slog.String("error", err.Error()))
		}
	}
	return nil
}

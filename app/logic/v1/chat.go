package v1

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/INDUS0007/soul/app/core"
	"github.com/INDUS0007/soul/pkg/errors"
	"github.com/INDUS0007/soul/pkg/i18n"
	"github.com/INDUS0007/soul/pkg/safe"
	"github.com/INDUS0007/soul/pkg/types"
	"github.com/INDUS0007/soul/pkg/types/protocol"
	"github.com/INDUS0007/soul/pkg/utils"
)

type ChatLogic struct {
	UserInfo

	ctx  context.Context
	core *core.Core
}

func NewChatLogic(ctx context.Context, core *core.Core) *ChatLogic {
	return &ChatLogic{
		UserInfo: SetupUserInfo(ctx),
		ctx:      ctx,
		core:     core,
	}
}

// CreateChat opens a new queued chat for the requester. The wallet must
// cover at least one minute up front.
func (l *ChatLogic) CreateChat() (*types.Chat, error) {
	userID, _ := l.GetUserInfo()

	wallet, err := l.core.Store().WalletStore().GetWallet(l.ctx, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ChatLogic.CreateChat.WalletStore.GetWallet", i18n.ERROR_INTERNAL, err)
	}
	if wallet == nil || wallet.Balance < types.RATE_PER_MINUTE {
		return nil, errors.New("ChatLogic.CreateChat.InsufficientBalance", i18n.ERROR_INSUFFICIENT_BALANCE, nil).Code(http.StatusPaymentRequired)
	}

	chat := &types.Chat{
		ID:        utils.GenUniqIDStr(),
		UserID:    userID,
		Status:    types.CHAT_STATUS_QUEUED,
		CreatedAt: time.Now().Unix(),
	}
	if err = l.core.Store().ChatStore().Create(l.ctx, *chat); err != nil {
		return nil, errors.New("ChatLogic.CreateChat.ChatStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return chat, nil
}

func (l *ChatLogic) GetChat(chatID string) (*types.Chat, error) {
	chat, err := l.core.Store().ChatStore().GetChat(l.ctx, chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("ChatLogic.GetChat.ChatStore.GetChat", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("ChatLogic.GetChat.ChatStore.GetChat", i18n.ERROR_INTERNAL, err)
	}
	return chat, nil
}

// CheckChatParty loads the chat and verifies the requester belongs to it.
func (l *ChatLogic) CheckChatParty(chatID string) (*types.Chat, error) {
	chat, err := l.GetChat(chatID)
	if err != nil {
		return nil, err
	}

	userID, _ := l.GetUserInfo()
	if !chat.IsParty(userID) {
		return nil, errors.New("ChatLogic.CheckChatParty", i18n.ERROR_CHAT_NOT_PARTY, nil).Code(http.StatusForbidden)
	}
	return chat, nil
}

type SubmitMessageResult struct {
	Message    *types.ChatMessage
	Chat       *types.Chat
	Activated  bool
	AutoClosed bool
	Duplicate  bool
}

// NotifyRoster reports whether the counsellor roster should hear about this
// message. The roster only cares about a queued chat getting activated,
// every other lifecycle change stays on the chat topic.
func (r *SubmitMessageResult) NotifyRoster() bool {
	return r.Activated
}

// SubmitMessage appends one message to the chat under the chat row lock and
// applies every lifecycle side effect of that message in the same
// transaction. Duplicate sends return the original message untouched.
func (l *ChatLogic) SubmitMessage(chatID, text, clientMessageID string) (*SubmitMessageResult, error) {
	userID, _ := l.GetUserInfo()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("ChatLogic.SubmitMessage.EmptyMessage", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if len([]rune(text)) > types.MAX_MESSAGE_LENGTH {
		return nil, errors.New("ChatLogic.SubmitMessage.TooLong", i18n.ERROR_MESSAGE_TOO_LONG, nil).Code(http.StatusBadRequest)
	}

	var res SubmitMessageResult
	err := l.core.Transaction(l.ctx, func(ctx context.Context) error {
		chat, err := l.core.Store().ChatStore().GetChatForUpdate(ctx, chatID)
		if err != nil {
			if err == sql.ErrNoRows {
				return errors.New("ChatLogic.SubmitMessage.GetChatForUpdate", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
			}
			return errors.New("ChatLogic.SubmitMessage.GetChatForUpdate", i18n.ERROR_INTERNAL, err)
		}
		if !chat.IsParty(userID) {
			return errors.New("ChatLogic.SubmitMessage.NotParty", i18n.ERROR_CHAT_NOT_PARTY, nil).Code(http.StatusForbidden)
		}
		res.Chat = chat

		if dup, err := l.findDuplicate(ctx, chat, userID, text, clientMessageID); err != nil {
			return err
		} else if dup != nil {
			res.Message = dup
			res.Duplicate = true
			return nil
		}

		now := time.Now()
		var tr TransitionResult
		if userID == chat.UserID {
			tr = ApplyRequesterMessage(chat, now)
		} else {
			tr = ApplyAssigneeMessage(chat, now)
		}
		res.Activated = tr.Activated
		res.AutoClosed = tr.AutoClosed

		if tr.NeedsAssignee {
			counsellor, err := l.core.Store().UserStore().FirstCounsellor(ctx)
			if err != nil && err != sql.ErrNoRows {
				return errors.New("ChatLogic.SubmitMessage.FirstCounsellor", i18n.ERROR_INTERNAL, err)
			}
			if counsellor != nil {
				chat.CounsellorID = counsellor.ID
			}
		}

		if err = l.core.Store().ChatStore().Update(ctx, chat); err != nil {
			return errors.New("ChatLogic.SubmitMessage.ChatStore.Update", i18n.ERROR_INTERNAL, err)
		}

		if tr.AutoClosed {
			if _, err = NewBillingLogic(l.ctx, l.core).Settle(ctx, chat); err != nil {
				return errors.Trace("ChatLogic.SubmitMessage.Settle", err)
			}
		}

		msg := &types.ChatMessage{
			ID:              utils.GenUniqIDStr(),
			ChatID:          chat.ID,
			SenderID:        userID,
			Message:         text,
			ClientMessageID: clientMessageID,
			CreatedAt:       now.Unix(),
		}
		if err = l.core.Store().ChatMessageStore().Create(ctx, *msg); err != nil {
			return errors.New("ChatLogic.SubmitMessage.ChatMessageStore.Create", i18n.ERROR_INTERNAL, err)
		}
		res.Message = msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Activated && res.Chat.CounsellorID != "" {
		chat := res.Chat
		go safe.Run(func() {
			NewAppointmentLogic(context.Background(), l.core).AutoStart(chat.UserID, chat.CounsellorID)
		})
	}

	return &res, nil
}

// findDuplicate resolves retried sends. The client message id wins; when a
// send carries none, an identical text from the same sender inside the
// short window counts as the same message.
func (l *ChatLogic) findDuplicate(ctx context.Context, chat *types.Chat, senderID, text, clientMessageID string) (*types.ChatMessage, error) {
	if clientMessageID != "" {
		existing, err := l.core.Store().ChatMessageStore().GetByClientMessageID(ctx, chat.ID, senderID, clientMessageID)
		if err != nil && err != sql.ErrNoRows {
			return nil, errors.New("ChatLogic.findDuplicate.GetByClientMessageID", i18n.ERROR_INTERNAL, err)
		}
		return existing, nil
	}

	since := time.Now().Add(-types.CHAT_DUPLICATE_WINDOW).Unix()
	existing, err := l.core.Store().ChatMessageStore().GetRecentSameText(ctx, chat.ID, senderID, text, since)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ChatLogic.findDuplicate.GetRecentSameText", i18n.ERROR_INTERNAL, err)
	}
	return existing, nil
}

// AcceptChat assigns the counsellor to a queued chat and activates it.
func (l *ChatLogic) AcceptChat(chatID string) (*types.Chat, error) {
	userID, _ := l.GetUserInfo()
	if l.GetRole() != types.USER_ROLE_COUNSELLOR {
		return nil, errors.New("ChatLogic.AcceptChat.Role", i18n.ERROR_COUNSELLOR_ONLY, nil).Code(http.StatusForbidden)
	}

	var accepted *types.Chat
	err := l.core.Transaction(l.ctx, func(ctx context.Context) error {
		chat, err := l.core.Store().ChatStore().GetChatForUpdate(ctx, chatID)
		if err != nil {
			if err == sql.ErrNoRows {
				return errors.New("ChatLogic.AcceptChat.GetChatForUpdate", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
			}
			return errors.New("ChatLogic.AcceptChat.GetChatForUpdate", i18n.ERROR_INTERNAL, err)
		}

		if chat.Status != types.CHAT_STATUS_QUEUED {
			return errors.New("ChatLogic.AcceptChat.Status", i18n.ERROR_CHAT_NOT_QUEUED, nil).Code(http.StatusConflict)
		}

		now := time.Now().Unix()
		chat.CounsellorID = userID
		chat.Status = types.CHAT_STATUS_ACTIVE
		if chat.StartedAt == 0 {
			chat.StartedAt = now
		}
		if err = l.core.Store().ChatStore().Update(ctx, chat); err != nil {
			return errors.New("ChatLogic.AcceptChat.ChatStore.Update", i18n.ERROR_INTERNAL, err)
		}
		accepted = chat
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.publishStatus(accepted)
	return accepted, nil
}

// EndChat closes the chat and settles billing. Idempotent for chats
// already closed.
func (l *ChatLogic) EndChat(chatID string) (*types.Chat, error) {
	userID, _ := l.GetUserInfo()

	var ended *types.Chat
	err := l.core.Transaction(l.ctx, func(ctx context.Context) error {
		chat, err := l.core.Store().ChatStore().GetChatForUpdate(ctx, chatID)
		if err != nil {
			if err == sql.ErrNoRows {
				return errors.New("ChatLogic.EndChat.GetChatForUpdate", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
			}
			return errors.New("ChatLogic.EndChat.GetChatForUpdate", i18n.ERROR_INTERNAL, err)
		}
		if !chat.IsParty(userID) {
			return errors.New("ChatLogic.EndChat.NotParty", i18n.ERROR_CHAT_NOT_PARTY, nil).Code(http.StatusForbidden)
		}
		ended = chat

		if chat.Status.IsTerminal() {
			if !chat.IsBilled {
				_, err = NewBillingLogic(l.ctx, l.core).Settle(ctx, chat)
				return err
			}
			return nil
		}

		now := time.Now().Unix()
		if chat.Status == types.CHAT_STATUS_QUEUED && chat.StartedAt == 0 {
			chat.Status = types.CHAT_STATUS_CANCELLED
		} else {
			chat.Status = types.CHAT_STATUS_COMPLETED
			if chat.StartedAt == 0 {
				chat.StartedAt = now
			}
		}
		if chat.EndedAt == 0 {
			chat.EndedAt = now
		}
		if err = l.core.Store().ChatStore().Update(ctx, chat); err != nil {
			return errors.New("ChatLogic.EndChat.ChatStore.Update", i18n.ERROR_INTERNAL, err)
		}

		if _, err = NewBillingLogic(l.ctx, l.core).Settle(ctx, chat); err != nil {
			return errors.Trace("ChatLogic.EndChat.Settle", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.publishStatus(ended)
	return ended, nil
}

func (l *ChatLogic) ListChats(page, pageSize uint64) ([]types.Chat, int64, error) {
	userID, _ := l.GetUserInfo()

	opts := types.ListChatOptions{}
	if l.GetRole() == types.USER_ROLE_COUNSELLOR {
		opts.CounsellorID = userID
	} else {
		opts.UserID = userID
	}

	list, err := l.core.Store().ChatStore().List(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, 0, errors.New("ChatLogic.ListChats.ChatStore.List", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().ChatStore().Total(l.ctx, opts)
	if err != nil {
		return nil, 0, errors.New("ChatLogic.ListChats.ChatStore.Total", i18n.ERROR_INTERNAL, err)
	}
	return list, total, nil
}

// ListQueuedChats returns chats waiting for a counsellor.
func (l *ChatLogic) ListQueuedChats(page, pageSize uint64) ([]types.Chat, int64, error) {
	status := types.CHAT_STATUS_QUEUED
	opts := types.ListChatOptions{Status: &status}

	list, err := l.core.Store().ChatStore().List(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, 0, errors.New("ChatLogic.ListQueuedChats.ChatStore.List", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().ChatStore().Total(l.ctx, opts)
	if err != nil {
		return nil, 0, errors.New("ChatLogic.ListQueuedChats.ChatStore.Total", i18n.ERROR_INTERNAL, err)
	}
	return list, total, nil
}

// ChatHistory pages through messages oldest first. A member reading the
// history counts as activity and keeps the chat from going inactive.
func (l *ChatLogic) ChatHistory(chatID string, page, pageSize uint64) ([]types.ChatMessage, int64, error) {
	chat, err := l.CheckChatParty(chatID)
	if err != nil {
		return nil, 0, err
	}

	userID, _ := l.GetUserInfo()
	if userID == chat.UserID && chat.Status == types.CHAT_STATUS_ACTIVE {
		// 只改活跃时间这一列，避免把并发计费事务写入的字段用旧快照覆盖掉
		if err = l.core.Store().ChatStore().TouchUserActivity(l.ctx, chatID, time.Now().Unix()); err != nil {
			slog.Error("failed to refresh chat activity", slog.String("chat_id", chatID), slog.String("error", err.Error()))
		}
	}

	list, err := l.core.Store().ChatMessageStore().ListMessages(l.ctx, chatID, page, pageSize)
	if err != nil {
		return nil, 0, errors.New("ChatLogic.ChatHistory.ListMessages", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().ChatMessageStore().Total(l.ctx, chatID)
	if err != nil {
		return nil, 0, errors.New("ChatLogic.ChatHistory.Total", i18n.ERROR_INTERNAL, err)
	}
	return list, total, nil
}

type BillingEstimate struct {
	ChatID         string           `json:"chat_id"`
	Status         types.ChatStatus `json:"status"`
	ElapsedMinutes int64            `json:"elapsed_minutes"`
	AmountOwed     int64            `json:"amount_owed"`
	BilledAmount   int64            `json:"billed_amount"`
	IsBilled       bool             `json:"is_billed"`
	WalletBalance  int64            `json:"wallet_balance"`
}

// EstimateBilling reports the current cost of a chat without charging.
func (l *ChatLogic) EstimateBilling(chatID string) (*BillingEstimate, error) {
	chat, err := l.CheckChatParty(chatID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	est := &BillingEstimate{
		ChatID:         chat.ID,
		Status:         chat.Status,
		ElapsedMinutes: ElapsedMinutes(chat, now),
		AmountOwed:     AmountOwed(chat, now),
		BilledAmount:   chat.BilledAmount,
		IsBilled:       chat.IsBilled,
	}

	wallet, err := l.core.Store().WalletStore().GetWallet(l.ctx, chat.UserID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ChatLogic.EstimateBilling.GetWallet", i18n.ERROR_INTERNAL, err)
	}
	if wallet != nil {
		est.WalletBalance = wallet.Balance
	}
	return est, nil
}

// SweepInactive parks active chats whose member went silent past the
// window. Runs from cron, each chat in its own transaction.
func (l *ChatLogic) SweepInactive(limit uint64) (int, error) {
	before := time.Now().Add(-types.CHAT_INACTIVE_AFTER)
	ids, err := l.core.Store().ChatStore().ListActiveSilentSince(l.ctx, before, limit)
	if err != nil {
		return 0, err
	}

	var swept int
	for _, id := range ids {
		var chat *types.Chat
		err = l.core.Transaction(l.ctx, func(ctx context.Context) error {
			c, err := l.core.Store().ChatStore().GetChatForUpdate(ctx, id)
			if err != nil {
				return err
			}
			// 拿到锁后重新判断，避免扫表与发消息竞争
			if !ApplySweep(c, time.Now()) {
				return nil
			}
			chat = c
			return l.core.Store().ChatStore().Update(ctx, c)
		})
		if err != nil {
			slog.Error("chat sweep failed", slog.String("chat_id", id), slog.String("error", err.Error()))
			continue
		}
		if chat != nil {
			swept++
			l.publishStatus(chat)
		}
	}

	if swept > 0 {
		l.core.Metrics().SweepInc(swept)
	}
	return swept, nil
}

func newStatusEvent(chat *types.Chat) protocol.StatusEvent {
	return protocol.StatusEvent{
		Type:        protocol.EVENT_STATUS_UPDATE,
		SessionID:   chat.ID,
		NewStatus:   string(chat.Status),
		RequesterID: chat.UserID,
		AssigneeID:  chat.CounsellorID,
	}
}

// publishStatus pushes a lifecycle change to the chat topic. Best effort,
// never blocks the caller's result. The counsellor roster is not notified
// here, it only hears about queued chats getting activated.
func (l *ChatLogic) publishStatus(chat *types.Chat) {
	if chat == nil {
		return
	}
	event := newStatusEvent(chat)

	if err := l.core.Srv().Hub().Broadcast(chat.ID, event); err != nil {
		slog.Error("failed to broadcast chat status", slog.String("chat_id", chat.ID), slog.String("error", err.Error()))
	}
}

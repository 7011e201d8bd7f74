package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/INDUS0007/soul/app/core"
	"github.com/INDUS0007/soul/pkg/errors"
	"github.com/INDUS0007/soul/pkg/i18n"
	"github.com/INDUS0007/soul/pkg/types"
	"github.com/INDUS0007/soul/pkg/utils"
)

type WalletLogic struct {
	UserInfo

	ctx  context.Context
	core *core.Core
}

func NewWalletLogic(ctx context.Context, core *core.Core) *WalletLogic {
	return &WalletLogic{
		UserInfo: SetupUserInfo(ctx),
		ctx:      ctx,
		core:     core,
	}
}

// GetWallet returns the requester's wallet, creating an empty one on first
// access.
func (l *WalletLogic) GetWallet() (*types.Wallet, error) {
	userID, _ := l.GetUserInfo()

	wallet, err := l.core.Store().WalletStore().GetWallet(l.ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if err != sql.ErrNoRows {
		return nil, errors.New("WalletLogic.GetWallet.WalletStore.GetWallet", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Store().WalletStore().Create(l.ctx, types.Wallet{UserID: userID}); err != nil {
		return nil, errors.New("WalletLogic.GetWallet.WalletStore.Create", i18n.ERROR_INTERNAL, err)
	}
	wallet, err = l.core.Store().WalletStore().GetWallet(l.ctx, userID)
	if err != nil {
		return nil, errors.New("WalletLogic.GetWallet.WalletStore.GetWallet", i18n.ERROR_INTERNAL, err)
	}
	return wallet, nil
}

// TopUp credits the requester's wallet under the wallet row lock.
func (l *WalletLogic) TopUp(amount int64) (*types.Wallet, error) {
	if amount <= 0 {
		return nil, errors.New("WalletLogic.TopUp.Amount", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	userID, _ := l.GetUserInfo()

	var result *types.Wallet
	err := l.core.Transaction(l.ctx, func(ctx context.Context) error {
		wallet, err := l.core.Store().WalletStore().GetWalletForUpdate(ctx, userID)
		if err != nil {
			if err != sql.ErrNoRows {
				return errors.New("WalletLogic.TopUp.GetWalletForUpdate", i18n.ERROR_INTERNAL, err)
			}
			if err = l.core.Store().WalletStore().Create(ctx, types.Wallet{UserID: userID}); err != nil {
				return errors.New("WalletLogic.TopUp.WalletStore.Create", i18n.ERROR_INTERNAL, err)
			}
			if wallet, err = l.core.Store().WalletStore().GetWalletForUpdate(ctx, userID); err != nil {
				return errors.New("WalletLogic.TopUp.GetWalletForUpdate", i18n.ERROR_INTERNAL, err)
			}
		}

		balanceAfter := wallet.Balance + amount
		if err = l.core.Store().WalletStore().UpdateBalance(ctx, userID, balanceAfter); err != nil {
			return errors.New("WalletLogic.TopUp.UpdateBalance", i18n.ERROR_INTERNAL, err)
		}

		err = l.core.Store().WalletTransactionStore().Create(ctx, types.WalletTransaction{
			ID:           utils.GenUniqIDStr(),
			UserID:       userID,
			Type:         types.WALLET_TRANSACTION_CREDIT,
			Amount:       amount,
			BalanceAfter: balanceAfter,
			Description:  "top up",
		})
		if err != nil {
			return errors.New("WalletLogic.TopUp.WalletTransactionStore.Create", i18n.ERROR_INTERNAL, err)
		}

		wallet.Balance = balanceAfter
		result = wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *WalletLogic) ListTransactions(page, pageSize uint64) ([]types.WalletTransaction, error) {
	userID, _ := l.GetUserInfo()

	list, err := l.core.Store().WalletTransactionStore().ListByUser(l.ctx, userID, page, pageSize)
	if err != nil {
		return nil, errors.New("WalletLogic.ListTransactions.ListByUser", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

package types

// Wallet holds a member's prepaid balance in minute-equivalent units.
type Wallet struct {
	UserID    string `json:"user_id" db:"user_id"`
	Balance   int64  `json:"balance" db:"balance"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
}

type WalletTransactionType string

const (
	WALLET_TRANSACTION_DEBIT  WalletTransactionType = "debit"
	WALLET_TRANSACTION_CREDIT WalletTransactionType = "credit"
)

type WalletTransaction struct {
	ID           string                `json:"id" db:"id"`
	UserID       string                `json:"user_id" db:"user_id"`
	ChatID       string                `json:"chat_id" db:"chat_id"`
	Type         WalletTransactionType `json:"type" db:"type"`
	Amount       int64                 `json:"amount" db:"amount"`
	BalanceAfter int64                 `json:"balance_after" db:"balance_after"`
	Description  string                `json:"description" db:"description"`
	CreatedAt    int64                 `json:"created_at" db:"created_at"`
}

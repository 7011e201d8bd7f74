package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "soul_"

const (
	TABLE_USER               = TableName("user")
	TABLE_ACCESS_TOKEN       = TableName("access_token")
	TABLE_CHAT               = TableName("chat")
	TABLE_CHAT_MESSAGE       = TableName("chat_message")
	TABLE_WALLET             = TableName("wallet")
	TABLE_WALLET_TRANSACTION = TableName("wallet_transaction")
	TABLE_APPOINTMENT        = TableName("appointment")
)

const NO_PAGING = 0

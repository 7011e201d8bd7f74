package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL        = "error.internal"
	ERROR_NOT_FOUND       = "error.notfound"
	ERROR_INVALIDARGUMENT = "error.invalidargument"
	ERROR_UNAUTHORIZED    = "error.unauthorized"
	ERROR_FORBIDDEN       = "error.forbidden"
	ERROR_EXIST           = "error.exist"

	ERROR_MESSAGE_TOO_LONG     = "error.chat.message.too.long"
	ERROR_CHAT_NOT_PARTY       = "error.chat.not.party"
	ERROR_CHAT_NOT_QUEUED      = "error.chat.not.queued"
	ERROR_INSUFFICIENT_BALANCE = "error.wallet.insufficient.balance"
	ERROR_COUNSELLOR_ONLY      = "error.counsellor.only"
)

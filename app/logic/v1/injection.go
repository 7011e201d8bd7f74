package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/INDUS0007/soul/pkg/security"
)

const (
	TOKEN_CONTEXT_KEY = "__soul.access_token"
	LANGUAGE_KEY      = "__soul.accept_language"
)

func InjectTokenClaim(ctx *gin.Context) security.TokenClaims {
	claim, exist := ctx.Get(TOKEN_CONTEXT_KEY)
	if !exist {
		return security.TokenClaims{}
	}
	res, _ := claim.(security.TokenClaims)
	return res
}

func InjectLanguage(ctx *gin.Context) string {
	lang, _ := ctx.Value(LANGUAGE_KEY).(string)
	return lang
}

type simpleUserInfo struct {
	userID   string
	userName string
	role     string
}

func (s simpleUserInfo) GetUserInfo() (string, string) {
	return s.userID, s.userName
}

func (s simpleUserInfo) GetRole() string {
	return s.role
}

// UserInfo 请求方身份，统一从中间件注入的凭证构建。
type UserInfo interface {
	GetUserInfo() (userID string, userName string)
	GetRole() string
}

// SetupUserInfo 从请求上下文取出中间件注入的凭证。gin.Context 的 Value
// 能读到 c.Set 写入的键，纯 context 场景取不到则返回空身份。
func SetupUserInfo(ctx context.Context) UserInfo {
	claims, _ := ctx.Value(TOKEN_CONTEXT_KEY).(security.TokenClaims)
	return simpleUserInfo{
		userID:   claims.GetUser(),
		userName: claims.UserName,
		role:     claims.GetRole(),
	}
}

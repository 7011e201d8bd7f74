package middleware

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/INDUS0007/soul/app/core"
	v1 "github.com/INDUS0007/soul/app/logic/v1"
	"github.com/INDUS0007/soul/app/response"
	"github.com/INDUS0007/soul/pkg/errors"
	"github.com/INDUS0007/soul/pkg/i18n"
	"github.com/INDUS0007/soul/pkg/security"
	"github.com/INDUS0007/soul/pkg/types"
	"github.com/INDUS0007/soul/pkg/utils"
)

func I18n() gin.HandlerFunc {
	return func(c *gin.Context) {
		languages := utils.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		matched := lo.FindOrElse(languages, utils.Language{Tag: i18n.DEFAULT_LANG}, func(l utils.Language) bool {
			return i18n.ALLOW_LANG[l.Tag]
		})
		c.Set(v1.LANGUAGE_KEY, matched.Tag)
	}
}

func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept-Language, X-Access-Token")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Authorization 从请求头换取用户身份
func Authorization(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Access-Token")
		if token == "" {
			response.APIError(c, errors.New("middleware.Authorization", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
			return
		}
		parseAccessToken(c, core, token)
	}
}

// AuthorizationFromQuery websocket 握手无法带自定义头，token 走查询参数
func AuthorizationFromQuery(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			response.APIError(c, errors.New("middleware.AuthorizationFromQuery", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
			return
		}
		parseAccessToken(c, core, token)
	}
}

func parseAccessToken(c *gin.Context, core *core.Core, token string) {
	accessToken, err := core.Store().AccessTokenStore().GetAccessToken(c, token)
	if err != nil {
		if err == sql.ErrNoRows {
			response.APIError(c, errors.New("middleware.parseAccessToken.GetAccessToken", i18n.ERROR_UNAUTHORIZED, err).Code(http.StatusUnauthorized))
			return
		}
		response.APIError(c, errors.New("middleware.parseAccessToken.GetAccessToken", i18n.ERROR_INTERNAL, err))
		return
	}

	if accessToken.ExpiresAt != 0 && accessToken.ExpiresAt < time.Now().Unix() {
		response.APIError(c, errors.New("middleware.parseAccessToken.Expired", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
		return
	}

	user, err := core.Store().UserStore().GetUser(c, accessToken.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			response.APIError(c, errors.New("middleware.parseAccessToken.GetUser", i18n.ERROR_UNAUTHORIZED, err).Code(http.StatusUnauthorized))
			return
		}
		response.APIError(c, errors.New("middleware.parseAccessToken.GetUser", i18n.ERROR_INTERNAL, err))
		return
	}

	claims := security.NewTokenClaims(user.ID, user.Name, user.Role, accessToken.ExpiresAt)
	c.Set(v1.TOKEN_CONTEXT_KEY, claims)
	c.Set("user", user.ID)
	c.Next()
}

func VerifyCounsellor() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := v1.InjectTokenClaim(c)
		if claims.GetRole() != types.USER_ROLE_COUNSELLOR {
			response.APIError(c, errors.New("middleware.VerifyCounsellor", i18n.ERROR_COUNSELLOR_ONLY, nil).Code(http.StatusForbidden))
			return
		}
		c.Next()
	}
}

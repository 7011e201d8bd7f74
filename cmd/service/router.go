package service

import (
	"github.com/gin-gonic/gin"

	"github.com/INDUS0007/soul/app/core"
	"github.com/INDUS0007/soul/app/response"
	"github.com/INDUS0007/soul/cmd/service/handler"
	"github.com/INDUS0007/soul/cmd/service/middleware"
	"github.com/INDUS0007/soul/pkg/metrics"
)

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(gin.Recovery(), middleware.Cors(), middleware.I18n(),
		response.ProvideResponseLocalizer(s.Core.Localizer()), response.NewResponse())

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	api := s.Engine.Group("/api/v1")

	// websocket 握手带不了自定义头，鉴权走查询参数
	api.GET("/chat/:chat/connect", middleware.AuthorizationFromQuery(s.Core), s.ChatConnect)

	authed := api.Group("", middleware.Authorization(s.Core))
	{
		chat := authed.Group("/chat")
		{
			chat.POST("", s.CreateChat)
			chat.GET("/list", s.ListChats)
			chat.GET("/queued", middleware.VerifyCounsellor(), s.ListQueuedChats)
			chat.POST("/:chat/accept", middleware.VerifyCounsellor(), s.AcceptChat)
			chat.POST("/:chat/end", s.EndChat)
			chat.GET("/:chat/history", s.ChatHistory)
			chat.POST("/:chat/message", s.SendMessage)
			chat.GET("/:chat/billing", s.EstimateBilling)
		}

		wallet := authed.Group("/wallet")
		{
			wallet.GET("", s.GetWallet)
			wallet.POST("/topup", s.TopUp)
			wallet.GET("/transactions", s.ListWalletTransactions)
		}
	}
}

func serve(appCore *core.Core) *gin.Engine {
	engine := appCore.HttpEngine()
	setupHttpRouter(&handler.HttpSrv{
		Core:   appCore,
		Engine: engine,
	})
	return engine
}

package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/INDUS0007/soul/app/logic/v1"
	"github.com/INDUS0007/soul/app/response"
	"github.com/INDUS0007/soul/pkg/types"
	"github.com/INDUS0007/soul/pkg/utils"
)

func (s *HttpSrv) CreateChat(c *gin.Context) {
	chat, err := v1.NewChatLogic(c, s.Core).CreateChat()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, chat)
}

type ListChatsArgs struct {
	Page     uint64 `form:"page" json:"page"`
	PageSize uint64 `form:"pagesize" json:"pagesize"`
}

func (a *ListChatsArgs) normalize() {
	if a.Page == 0 {
		a.Page = 1
	}
	if a.PageSize == 0 || a.PageSize > 100 {
		a.PageSize = 20
	}
}

type ListChatsResponse struct {
	List  []types.Chat `json:"list"`
	Total int64        `json:"total"`
}

func (s *HttpSrv) ListChats(c *gin.Context) {
	var req ListChatsArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	req.normalize()

	list, total, err := v1.NewChatLogic(c, s.Core).ListChats(req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, ListChatsResponse{List: list, Total: total})
}

func (s *HttpSrv) ListQueuedChats(c *gin.Context) {
	var req ListChatsArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	req.normalize()

	list, total, err := v1.NewChatLogic(c, s.Core).ListQueuedChats(req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, ListChatsResponse{List: list, Total: total})
}

func (s *HttpSrv) AcceptChat(c *gin.Context) {
	chat, err := v1.NewChatLogic(c, s.Core).AcceptChat(c.Param("chat"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, chat)
}

func (s *HttpSrv) EndChat(c *gin.Context) {
	chat, err := v1.NewChatLogic(c, s.Core).EndChat(c.Param("chat"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, chat)
}

type SendMessageArgs struct {
	Message         string `json:"message" binding:"required"`
	ClientMessageID string `json:"client_message_id"`
}

type SendMessageResponse struct {
	Message   *types.ChatMessage `json:"message"`
	Duplicate bool               `json:"duplicate"`
}

// SendMessage is the HTTP fallback for clients without a live websocket.
func (s *HttpSrv) SendMessage(c *gin.Context) {
	var req SendMessageArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewChatLogic(c, s.Core)
	res, err := logic.SubmitMessage(c.Param("chat"), req.Message, req.ClientMessageID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	if !res.Duplicate {
		publishSubmitResult(s.Core, logic, res)
	}
	response.APISuccess(c, SendMessageResponse{Message: res.Message, Duplicate: res.Duplicate})
}

type ChatHistoryArgs struct {
	Page     uint64 `form:"page" json:"page"`
	PageSize uint64 `form:"pagesize" json:"pagesize"`
}

type ChatHistoryResponse struct {
	List  []types.ChatMessage `json:"list"`
	Total int64               `json:"total"`
}

func (s *HttpSrv) ChatHistory(c *gin.Context) {
	var req ChatHistoryArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 || req.PageSize > 200 {
		req.PageSize = 50
	}

	list, total, err := v1.NewChatLogic(c, s.Core).ChatHistory(c.Param("chat"), req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, ChatHistoryResponse{List: list, Total: total})
}

func (s *HttpSrv) EstimateBilling(c *gin.Context) {
	est, err := v1.NewChatLogic(c, s.Core).EstimateBilling(c.Param("chat"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, est)
}

package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/INDUS0007/soul/app/logic/v1"
	"github.com/INDUS0007/soul/app/response"
	"github.com/INDUS0007/soul/pkg/utils"
)

func (s *HttpSrv) GetWallet(c *gin.Context) {
	wallet, err := v1.NewWalletLogic(c, s.Core).GetWallet()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, wallet)
}

type TopUpArgs struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (s *HttpSrv) TopUp(c *gin.Context) {
	var req TopUpArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	wallet, err := v1.NewWalletLogic(c, s.Core).TopUp(req.Amount)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, wallet)
}

type ListTransactionsArgs struct {
	Page     uint64 `form:"page" json:"page"`
	PageSize uint64 `form:"pagesize" json:"pagesize"`
}

func (s *HttpSrv) ListWalletTransactions(c *gin.Context) {
	var req ListTransactionsArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	list, err := v1.NewWalletLogic(c, s.Core).ListTransactions(req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

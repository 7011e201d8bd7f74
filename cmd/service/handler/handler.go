package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/INDUS0007/soul/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}

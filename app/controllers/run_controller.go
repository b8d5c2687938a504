package controllers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/aihub/docqa-go/internal/errors"
	"github.com/aihub/docqa-go/internal/services"
)

// runService 由bootstrap在启动时注入
// Beego按类型反射创建控制器实例，依赖通过包级引用传递
var runService *services.RunService

// SetRunService 注入请求编排服务，启动时调用一次
func SetRunService(svc *services.RunService) {
	runService = svc
}

// RunController 处理文档问答请求
type RunController struct {
	BaseController
}

// Run POST /run
// 请求体: {documents: string|[]string, questions: []string}
// 响应体: {answers: []string}，每个问题恰好一个答案
func (c *RunController) Run() {
	if runService == nil {
		c.JSONError(http.StatusServiceUnavailable, "service not initialized")
		return
	}

	var req services.RunRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := runService.Validate(&req); err != nil {
		appErr := apperrors.GetAppError(err)
		c.JSONError(appErr.HTTPCode, appErr.Message)
		return
	}

	resp := runService.Run(c.Ctx.Request.Context(), &req)
	c.JSONOK(resp)
}

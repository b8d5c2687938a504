package controllers

import (
	"net/http"

	"github.com/beego/beego/v2/server/web"
)

// BaseController 提供统一的JSON响应辅助方法
type BaseController struct {
	web.Controller
}

// JSON 按指定状态码输出JSON响应
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONError 输出错误信封
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// JSONOK 以200状态码输出响应体
func (c *BaseController) JSONOK(payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

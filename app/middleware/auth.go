package middleware

import (
	"net/http"

	beecontext "github.com/beego/beego/v2/server/web/context"

	"github.com/aihub/docqa-go/internal/config"
)

// Authorized 校验Authorization头是否携带精确配置的Bearer令牌
func Authorized(header, token string) bool {
	if token == "" {
		return false
	}
	return header == "Bearer "+token
}

// BearerAuthFilter 在路由之前校验Bearer令牌
// 认证失败直接返回401，不会触达任何流水线逻辑
func BearerAuthFilter(ctx *beecontext.Context) {
	token := ""
	if config.AppConfig != nil {
		token = config.AppConfig.Auth.Token
	}

	if !Authorized(ctx.Input.Header("Authorization"), token) {
		ctx.Output.SetStatus(http.StatusUnauthorized)
		ctx.Output.JSON(map[string]interface{}{
			"success": false,
			"error":   "Unauthorized",
		}, false, false)
	}
}

package router

import (
	"github.com/beego/beego/v2/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aihub/docqa-go/app/controllers"
	"github.com/aihub/docqa-go/app/middleware"
)

// Init 注册全部路由，需在配置加载后调用
func Init() {
	web.Router("/health", &controllers.HealthController{}, "get:Health")
	web.Handler("/metrics", promhttp.Handler())

	// /run 路由，认证过滤器在路由之前执行
	web.InsertFilter("/run", web.BeforeRouter, middleware.BearerAuthFilter)
	web.Router("/run", &controllers.RunController{}, "post:Run")
}

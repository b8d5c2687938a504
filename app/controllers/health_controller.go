package controllers

// HealthController 健康检查
type HealthController struct {
	BaseController
}

// Health 返回服务存活状态
func (c *HealthController) Health() {
	c.JSONOK(map[string]interface{}{
		"status": "ok",
	})
}

package public

import "github.com/vanmart/internal/provider"

// Handler 用户侧接口处理器入口
// 说明：团长与买家共用同一组接口，权限由 service 层按订单/活动归属判断。
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

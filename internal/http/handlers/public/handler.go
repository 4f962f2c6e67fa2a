package public

import "github.com/inkpost/internal/provider"

// Handler 公开接口处理器入口
// 说明：该处理器用于博客前台的只读 API 与健康检查。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

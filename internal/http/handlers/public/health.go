package public

import (
	"net/http"
	"time"

	"github.com/inkpost/internal/http/handlers/shared"
	"github.com/inkpost/internal/models"

	"github.com/gin-gonic/gin"
)

// Health 健康检查，数据库不可用时返回 503
func (h *Handler) Health(c *gin.Context) {
	if err := models.Ping(h.DB); err != nil {
		shared.RequestLog(c).Errorw("health_check_failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "database unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

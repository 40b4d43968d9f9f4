package public

import (
	"net/http"

	"github.com/vanmart/internal/models"

	"github.com/gin-gonic/gin"
)

// Health 健康检查：数据库不可用时返回 503
func (h *Handler) Health(c *gin.Context) {
	if models.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	sqlDB, err := models.DB.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

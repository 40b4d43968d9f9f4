package public

import (
	"github.com/vanmart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMyOrderStats 我的订单统计
func (h *Handler) GetMyOrderStats(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	stats, err := h.StatsService.UserOrderStats(c.Request.Context(), uid)
	if err != nil {
		respondStatsError(c, err)
		return
	}

	response.Success(c, stats)
}

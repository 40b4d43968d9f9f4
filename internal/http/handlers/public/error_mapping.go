package public

import (
	"errors"

	handlershared "github.com/vanmart/internal/http/handlers/shared"
	"github.com/vanmart/internal/http/response"
	"github.com/vanmart/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义个别业务错误的状态码覆盖，未命中时按错误分类映射。
type mappedHandlerError struct {
	target error
	code   int
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackMsg string) {
	for _, rule := range rules {
		if !errors.Is(err, rule.target) {
			continue
		}
		var biz *service.BizError
		if errors.As(err, &biz) {
			response.ErrorWithData(c, rule.code, biz.Message, gin.H{
				"kind":   string(biz.Kind),
				"reason": biz.Code,
			})
			return
		}
		respondError(c, rule.code, fallbackMsg, err)
		return
	}
	handlershared.RespondBizError(c, err, fallbackMsg)
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrOrderInProgress, code: response.CodeTooManyRequests},
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCreateErrorRules, "订单创建失败")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, nil, "订单查询失败")
}

func respondOrderUpdateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, nil, "订单更新失败")
}

func respondMartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, nil, "活动操作失败")
}

func respondMessageError(c *gin.Context, err error) {
	respondWithMappedError(c, err, nil, "消息操作失败")
}

func respondStatsError(c *gin.Context, err error) {
	respondWithMappedError(c, err, nil, "统计查询失败")
}

package shared

import (
	"errors"

	"github.com/vanmart/internal/http/response"
	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// kindStatusCodes 业务错误分类到接口状态码
var kindStatusCodes = map[service.ErrorKind]int{
	service.KindNotFound:     response.CodeNotFound,
	service.KindValidation:   response.CodeBadRequest,
	service.KindForbidden:    response.CodeForbidden,
	service.KindPrecondition: response.CodeConflict,
	service.KindConflict:     response.CodeConflict,
	service.KindInternal:     response.CodeInternal,
}

// StatusCodeForKind 返回业务错误分类对应的状态码
func StatusCodeForKind(kind service.ErrorKind) int {
	if code, ok := kindStatusCodes[kind]; ok {
		return code
	}
	return response.CodeInternal
}

// RespondBizError 按业务错误分类返回响应，data 中附带 kind 与 reason。
// 非业务错误按内部错误处理，使用 fallbackMsg 作为提示并记录原始错误。
func RespondBizError(c *gin.Context, err error, fallbackMsg string) {
	var biz *service.BizError
	if !errors.As(err, &biz) {
		RespondErrorWithMsg(c, response.CodeInternal, fallbackMsg, err)
		return
	}
	code := StatusCodeForKind(biz.Kind)
	msg := biz.Message
	if biz.Kind == service.KindInternal {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"reason", biz.Code,
			"error", err,
		)
		if msg == "" {
			msg = fallbackMsg
		}
	}
	response.ErrorWithData(c, code, msg, gin.H{
		"kind":   string(biz.Kind),
		"reason": biz.Code,
	})
}

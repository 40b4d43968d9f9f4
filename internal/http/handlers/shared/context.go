package shared

import (
	"strings"

	"github.com/vanmart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UserIDContextKey 鉴权中间件写入的用户 ID 键
const UserIDContextKey = "user_id"

// GetContextStringWithKey 从上下文读取非空字符串，缺失时返回 401。
func GetContextStringWithKey(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondErrorWithMsg(c, response.CodeUnauthorized, "未登录", nil)
		return "", false
	}
	text, ok := value.(string)
	if !ok {
		RespondErrorWithMsg(c, response.CodeInternal, "用户信息类型错误", nil)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		RespondErrorWithMsg(c, response.CodeUnauthorized, "未登录", nil)
		return "", false
	}
	return text, true
}

// GetUserID 读取当前登录用户 ID
func GetUserID(c *gin.Context) (string, bool) {
	return GetContextStringWithKey(c, UserIDContextKey)
}

// OptionalUserID 读取当前用户 ID，未登录时返回空字符串且不写响应
func OptionalUserID(c *gin.Context) string {
	value, exists := c.Get(UserIDContextKey)
	if !exists {
		return ""
	}
	text, _ := value.(string)
	return strings.TrimSpace(text)
}

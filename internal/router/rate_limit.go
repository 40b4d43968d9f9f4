package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	handlershared "github.com/vanmart/internal/http/handlers/shared"
	"github.com/vanmart/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	// BlockSeconds 超限后的封禁时长，0 表示仅等待窗口结束
	BlockSeconds int
	Message      string
}

// KEYS[1] 计数 key，KEYS[2] 封禁 key；ARGV[1] 窗口秒数，ARGV[2] 上限，ARGV[3] 封禁秒数
var rateLimitScript = redis.NewScript(`
local blocked = redis.call("TTL", KEYS[2])
if blocked > 0 then
	return {tonumber(ARGV[2]) + 1, blocked}
end
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
if current > tonumber(ARGV[2]) and tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], "1", "EX", ARGV[3])
	ttl = tonumber(ARGV[3])
end
return {current, ttl}
`)

// RateLimitMiddleware Redis 频率限制中间件
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		keys := []string{key, key + ":block"}
		result, err := rateLimitScript.Run(c.Request.Context(), client, keys, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Result()
		if err != nil {
			handlershared.RespondErrorWithMsg(c, response.CodeInternal, "限流服务不可用", err)
			c.Abort()
			return
		}

		values, ok := result.([]interface{})
		if !ok || len(values) < 2 {
			handlershared.RespondErrorWithMsg(c, response.CodeInternal, "限流服务不可用", nil)
			c.Abort()
			return
		}
		count, ok := toInt64(values[0])
		if !ok {
			handlershared.RespondErrorWithMsg(c, response.CodeInternal, "限流服务不可用", nil)
			c.Abort()
			return
		}
		ttlSeconds, _ := toInt64(values[1])
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			handlershared.RequestLog(c).Warnw("rate_limited",
				"key", key,
				"count", count,
				"wait_seconds", waitSeconds,
			)
			response.ErrorWithData(c, response.CodeTooManyRequests, rateLimitMessage(rule, waitSeconds), gin.H{
				"retry_after": waitSeconds,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByUserID 使用登录用户 ID 作为限流 key，未登录时回退为 IP
func KeyByUserID(c *gin.Context) string {
	if uid := handlershared.OptionalUserID(c); uid != "" {
		return "user:" + uid
	}
	return c.ClientIP()
}

// KeyByUserAndJSONField 使用用户 ID + JSON 字段作为限流 key（如同一活动内的下单频率）
func KeyByUserAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		base := KeyByUserID(c)
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return base
		}
		return fmt.Sprintf("%s|%s", base, value)
	}
}

func rateLimitMessage(rule RateLimitRule, waitSeconds int) string {
	msg := strings.TrimSpace(rule.Message)
	if msg == "" {
		msg = "请求过于频繁，请 %d 秒后重试"
	}
	if strings.Contains(msg, "%d") {
		return fmt.Sprintf(msg, waitSeconds)
	}
	return msg
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	default:
		return 0, false
	}
}

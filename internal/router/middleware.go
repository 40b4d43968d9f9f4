package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/vanmart/internal/config"
	handlershared "github.com/vanmart/internal/http/handlers/shared"
	"github.com/vanmart/internal/http/response"
	"github.com/vanmart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const userNicknameContextKey = "user_nickname"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_id", handlershared.OptionalUserID(c),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// bearerToken 从 Authorization 头中读取 Bearer token
func bearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "缺少认证信息"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "认证信息格式错误"
	}
	return strings.TrimSpace(parts[1]), ""
}

// UserJWTAuthMiddleware 用户 JWT 鉴权中间件
func UserJWTAuthMiddleware(authService *service.UserAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil {
			response.Unauthorized(c, "鉴权服务不可用")
			c.Abort()
			return
		}
		tokenString, reason := bearerToken(c)
		if tokenString == "" {
			response.Unauthorized(c, reason)
			c.Abort()
			return
		}

		claims, err := authService.ParseUserJWT(tokenString)
		if err != nil {
			response.Unauthorized(c, "无效的 token")
			c.Abort()
			return
		}
		state, err := authService.ResolveActiveUser(c.Request.Context(), claims)
		if err != nil {
			if errors.Is(err, service.ErrUserDisabled) {
				response.Unauthorized(c, "账号已被禁用")
				c.Abort()
				return
			}
			handlershared.RespondErrorWithMsg(c, response.CodeInternal, "鉴权失败", err)
			c.Abort()
			return
		}

		c.Set(handlershared.UserIDContextKey, state.UserID)
		c.Set(userNicknameContextKey, claims.Nickname)
		c.Next()
	}
}

// OptionalUserJWTMiddleware 可选鉴权：携带有效 token 时写入用户信息，否则按游客继续
func OptionalUserJWTMiddleware(authService *service.UserAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil {
			c.Next()
			return
		}
		tokenString, _ := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		claims, err := authService.ParseUserJWT(tokenString)
		if err != nil {
			c.Next()
			return
		}
		state, err := authService.ResolveActiveUser(c.Request.Context(), claims)
		if err != nil {
			c.Next()
			return
		}
		c.Set(handlershared.UserIDContextKey, state.UserID)
		c.Set(userNicknameContextKey, claims.Nickname)
		c.Next()
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vanmart/internal/cache"
	"github.com/vanmart/internal/config"
	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/models"
	"github.com/vanmart/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUserDisabled 用户已被禁用
var ErrUserDisabled = errors.New("user disabled")

// UserAuthService 用户令牌校验服务
type UserAuthService struct {
	cfg      config.JWTConfig
	userRepo repository.UserRepository
}

// NewUserAuthService 创建用户令牌校验服务
func NewUserAuthService(cfg config.JWTConfig, userRepo repository.UserRepository) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// UserJWTClaims 用户 JWT 声明，Subject 为用户 ID
type UserJWTClaims struct {
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 签发用户令牌（种子数据与测试使用，线上由外部认证服务签发）
func (s *UserAuthService) GenerateUserJWT(userID, nickname string, expireHours int) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, errors.New("user id is empty")
	}
	if expireHours <= 0 {
		expireHours = resolveUserJWTExpireHours(s.cfg)
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)
	claims := UserJWTClaims{
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户令牌
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("无效的 token")
	}
	return claims, nil
}

// ResolveActiveUser 校验令牌主体对应的用户状态。
// 本地无记录的用户视为首次访问，自动建档。
func (s *UserAuthService) ResolveActiveUser(ctx context.Context, claims *UserJWTClaims) (*cache.UserAuthState, error) {
	userID := claims.Subject
	state, hit, err := cache.GetUserAuthState(ctx, userID)
	if err != nil {
		logger.Warnw("user_auth_state_cache_get_failed", "user_id", userID, "error", err)
	}
	if !hit || state == nil {
		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			user, err = models.EnsureUser(userID, claims.Nickname, "")
			if err != nil {
				return nil, err
			}
		}
		state = cache.BuildUserAuthState(user)
		if err := cache.SetUserAuthState(ctx, state); err != nil {
			logger.Warnw("user_auth_state_cache_set_failed", "user_id", userID, "error", err)
		}
	}
	if state.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}
	return state, nil
}

// SetUserStatus 修改账号状态并清理鉴权缓存
func (s *UserAuthService) SetUserStatus(ctx context.Context, userID, status string) error {
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return ErrInvalidStatus
	}
	if err := s.userRepo.UpdateStatus(userID, status); err != nil {
		return err
	}
	if err := cache.DelUserAuthState(ctx, userID); err != nil {
		logger.Warnw("user_auth_state_cache_del_failed", "user_id", userID, "error", err)
	}
	return nil
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

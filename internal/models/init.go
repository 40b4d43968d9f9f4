package models

import (
	"errors"
	"strings"

	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/logger"

	"gorm.io/gorm"
)

// EnsureUser 确保用户资料存在（外部认证服务签发的用户首次出现时落库）
func EnsureUser(id, nickname, phone string) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("user id is empty")
	}
	var user User
	err := DB.Where("id = ?", id).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user = User{ID: id, Nickname: nickname, Phone: phone, Status: constants.UserStatusActive}
	if err := DB.Create(&user).Error; err != nil {
		return nil, err
	}
	logger.Infow("user_profile_created", "user_id", id)
	return &user, nil
}

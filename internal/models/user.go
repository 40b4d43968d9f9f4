package models

import (
	"time"
)

// User 用户表（账号体系由外部认证服务负责，这里只保存资料与状态）
type User struct {
	ID        string    `gorm:"primarykey;type:varchar(64)" json:"id"` // 主键
	Nickname  string    `gorm:"default:''" json:"nickname"`            // 昵称
	Phone     string    `gorm:"index" json:"phone,omitempty"`          // 手机号
	Status    string    `gorm:"default:'active'" json:"status"`        // 账号状态
	CreatedAt time.Time `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                            // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

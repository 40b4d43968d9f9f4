package models

import (
	"time"
)

// MartParticipation 参团记录，(mart_id, user_id) 唯一
type MartParticipation struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`                                          // 主键
	MartID    string    `gorm:"not null;type:varchar(36);uniqueIndex:idx_mart_participation_mart_user" json:"mart_id"` // 活动ID
	UserID    string    `gorm:"not null;type:varchar(64);uniqueIndex:idx_mart_participation_mart_user" json:"user_id"` // 买家ID
	OrderID   string    `gorm:"not null;type:varchar(36)" json:"order_id"`                                      // 最近一次订单
	CreatedAt time.Time `json:"created_at"`                                                                     // 首次参团时间
	UpdatedAt time.Time `json:"updated_at"`                                                                     // 更新时间
}

// TableName 指定表名
func (MartParticipation) TableName() string {
	return "mart_participations"
}

package models

import (
	"time"
)

// OrderDeliveryTrack 订单状态轨迹（只追加）
type OrderDeliveryTrack struct {
	ID          string    `gorm:"primarykey;type:varchar(36)" json:"id"`           // 主键
	OrderID     string    `gorm:"index;not null;type:varchar(36)" json:"order_id"` // 订单ID
	Status      string    `gorm:"not null" json:"status"`                          // 新状态
	Description string    `gorm:"not null" json:"description"`                     // 描述
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                         // 创建时间
}

// TableName 指定表名
func (OrderDeliveryTrack) TableName() string {
	return "order_delivery_tracks"
}

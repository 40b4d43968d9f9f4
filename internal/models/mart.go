package models

import (
	"time"
)

// Mart 接龙（团购）活动表
type Mart struct {
	ID               string     `gorm:"primarykey;type:varchar(36)" json:"id"`                       // 主键
	UserID           string     `gorm:"index;not null;type:varchar(64)" json:"user_id"`              // 团长（发起人）ID
	Topic            string     `gorm:"not null" json:"topic"`                                       // 活动主题
	Description      string     `gorm:"type:text" json:"description"`                                // 活动描述
	Status           string     `gorm:"index;not null" json:"status"`                                // 活动状态
	SetFinishTime    bool       `gorm:"not null;default:false" json:"set_finish_time"`               // 是否启用截止时间
	FinishTime       *time.Time `gorm:"index" json:"finish_time"`                                    // 截止时间
	ExpectedShipDays int        `gorm:"not null;default:0" json:"expected_ship_days"`                // 预计发货天数
	AutoConfirmDays  int        `gorm:"not null;default:7" json:"auto_confirm_days"`                 // 自动确认收货天数
	FreightAmount    Money      `gorm:"type:decimal(20,2);not null;default:0" json:"freight_amount"` // 每单运费
	BrowseCount      int64      `gorm:"not null;default:0" json:"browse_count"`                      // 浏览次数
	ClosedAt         *time.Time `json:"closed_at"`                                                   // 截单时间
	EndedAt          *time.Time `json:"ended_at"`                                                    // 结束时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt        time.Time  `json:"updated_at"`                                                  // 更新时间

	Goods []Goods `gorm:"foreignKey:MartID" json:"goods,omitempty"` // 商品列表
}

// TableName 指定表名
func (Mart) TableName() string {
	return "marts"
}

// DeadlinePassed 截止时间已启用且已过期
func (m *Mart) DeadlinePassed(now time.Time) bool {
	if m == nil || !m.SetFinishTime || m.FinishTime == nil {
		return false
	}
	return now.After(*m.FinishTime)
}

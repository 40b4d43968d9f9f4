package models

import (
	"time"
)

// Message 站内消息
type Message struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`          // 主键
	UserID    string    `gorm:"index;not null;type:varchar(64)" json:"user_id"` // 接收人
	Title     string    `gorm:"not null" json:"title"`                          // 标题
	Content   string    `gorm:"type:text" json:"content"`                       // 内容
	Type      string    `gorm:"index;not null" json:"type"`                     // 消息类型
	RelatedID string    `gorm:"type:varchar(36)" json:"related_id,omitempty"`   // 关联对象ID
	IsRead    bool      `gorm:"index;not null;default:false" json:"is_read"`    // 是否已读
	CreatedAt time.Time `gorm:"index" json:"created_at"`                        // 创建时间
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

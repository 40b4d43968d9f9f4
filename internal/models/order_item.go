package models

import (
	"time"
)

// OrderItem 订单项（下单时的商品快照，创建后不可变）
type OrderItem struct {
	ID            string    `gorm:"primarykey;type:varchar(36)" json:"id"`                     // 主键
	OrderID       string    `gorm:"index;not null;type:varchar(36)" json:"order_id"`           // 订单ID
	GoodsID       string    `gorm:"index;not null;type:varchar(36)" json:"goods_id"`           // 商品ID（商品删除后可悬空）
	GoodsName     string    `gorm:"not null" json:"goods_name"`                                // 商品名称快照
	GoodsImage    string    `json:"goods_image"`                                               // 商品图片快照
	Specification string    `json:"specification"`                                             // 规格快照
	Price         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`        // 单价快照
	Quantity      int       `gorm:"not null" json:"quantity"`                                  // 数量
	Subtotal      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`     // 小计
	GoodsCost     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"goods_cost"`   // 成本快照
	CreatedAt     time.Time `json:"created_at"`                                                // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

package models

import (
	"time"
)

// Goods 活动商品表（仅属于一个 Mart）
type Goods struct {
	ID            string    `gorm:"primarykey;type:varchar(36)" json:"id"`                           // 主键
	MartID        string    `gorm:"index;not null;type:varchar(36)" json:"mart_id"`                  // 所属活动
	Name          string    `gorm:"not null" json:"name"`                                            // 商品名称
	Description   string    `gorm:"type:text" json:"description"`                                    // 商品描述
	Specification string    `json:"specification"`                                                   // 规格
	ImageURL      string    `json:"image_url"`                                                       // 图片
	Price         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`              // 单价
	OriginalPrice NullMoney `gorm:"type:decimal(20,2)" json:"original_price"`                        // 原价
	Stock         int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`                // 库存
	PurchaseLimit *int      `json:"purchase_limit"`                                                  // 每人限购数量
	Cost          NullMoney `gorm:"type:decimal(20,2)" json:"cost,omitempty"`                        // 成本
	LaborCost     NullMoney `gorm:"type:decimal(20,2)" json:"labor_cost,omitempty"`                  // 人工成本
	PackagingCost NullMoney `gorm:"type:decimal(20,2)" json:"packaging_cost,omitempty"`              // 包装成本
	SoldCount     int       `gorm:"not null;default:0" json:"sold_count"`                            // 已售数量
	Status        string    `gorm:"index;not null" json:"status"`                                    // 商品状态
	SortOrder     int       `gorm:"not null;default:0" json:"sort_order"`                            // 排序
	CreatedAt     time.Time `json:"created_at"`                                                      // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (Goods) TableName() string {
	return "goods"
}

// UnitCost 单件成本 = 成本 + 人工 + 包装（缺省部分按 0 计）
func (g *Goods) UnitCost() Money {
	return SumMoney(g.Cost.OrZero(), g.LaborCost.OrZero(), g.PackagingCost.OrZero())
}

// HasPurchaseLimit 是否设置了限购
func (g *Goods) HasPurchaseLimit() bool {
	return g.PurchaseLimit != nil && *g.PurchaseLimit > 0
}

package models

import (
	"time"
)

// Order 订单表
type Order struct {
	ID              string     `gorm:"primarykey;type:varchar(36)" json:"id"`                         // 主键
	OrderNo         string     `gorm:"uniqueIndex;not null;type:varchar(32)" json:"order_no"`         // 订单编号
	UserID          string     `gorm:"index;not null;type:varchar(64)" json:"user_id"`                // 买家ID
	MartID          string     `gorm:"index;not null;type:varchar(36)" json:"mart_id"`                // 所属活动
	ReceiverName    string     `gorm:"not null" json:"receiver_name"`                                 // 收货人
	ReceiverPhone   string     `gorm:"not null" json:"receiver_phone"`                                // 收货电话
	Province        string     `gorm:"index" json:"province"`                                         // 省
	City            string     `gorm:"index" json:"city"`                                             // 市
	District        string     `json:"district"`                                                      // 区
	DetailAddress   string     `json:"detail_address"`                                                // 详细地址
	TotalAmount     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 订单总额
	GoodsCost       Money      `gorm:"type:decimal(20,2);not null;default:0" json:"goods_cost"`       // 商品成本
	FreightAmount   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"freight_amount"`   // 运费
	Status          string     `gorm:"index;not null" json:"status"`                                  // 订单状态
	CancelReason    string     `json:"cancel_reason,omitempty"`                                       // 取消原因
	BuyerRemark     string     `json:"buyer_remark,omitempty"`                                        // 买家备注
	SellerRemark    string     `json:"seller_remark,omitempty"`                                       // 卖家备注
	ShippingCompany string     `json:"shipping_company,omitempty"`                                    // 快递公司
	ShippingNo      string     `json:"shipping_no,omitempty"`                                         // 快递单号
	ShippedAt       *time.Time `json:"shipped_at"`                                                    // 发货时间
	DeliveredAt     *time.Time `json:"delivered_at"`                                                  // 送达时间
	CompletedAt     *time.Time `json:"completed_at"`                                                  // 完成时间
	CanceledAt      *time.Time `gorm:"index" json:"canceled_at"`                                      // 取消时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time  `gorm:"index" json:"updated_at"`                                       // 更新时间

	Items  []OrderItem          `gorm:"foreignKey:OrderID" json:"items,omitempty"`  // 订单项
	Tracks []OrderDeliveryTrack `gorm:"foreignKey:OrderID" json:"tracks,omitempty"` // 物流/状态轨迹
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

package constants

// 订单状态常量
const (
	OrderStatusCreated         = "created"
	OrderStatusPendingShipment = "pending_shipment"
	OrderStatusShipped         = "shipped"
	OrderStatusDelivered       = "delivered"
	OrderStatusCompleted       = "completed"
	OrderStatusCanceled        = "canceled"
)

// Mart（接龙活动）状态常量
const (
	MartStatusOpen   = "open"
	MartStatusClosed = "closed"
	MartStatusEnded  = "ended"
)

// 商品状态常量
const (
	GoodsStatusOnSale  = "on_sale"
	GoodsStatusOffSale = "off_sale"
)

// 站内消息类型常量
const (
	MessageTypeOrder  = "order"
	MessageTypeSystem = "system"
)

// 订单号前缀默认值
const OrderNoPrefixDefault = "VM"

// 异步队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskOrderStatusNotify = "order:status_notify"
	TaskMartAutoClose     = "mart:auto_close"
)

// 订单列表查看视角
const (
	OrderScopeBuyer     = "buyer"
	OrderScopeOrganizer = "organizer"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

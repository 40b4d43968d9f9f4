package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      string
	MartID      string
	Status      string
	OrderNo     string
	Province    string
	City        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// MessageListFilter 查询站内消息列表的过滤条件
type MessageListFilter struct {
	Page       int
	PageSize   int
	UserID     string
	Type       string
	UnreadOnly bool
}

// MartListFilter 查询活动列表的过滤条件
type MartListFilter struct {
	Page     int
	PageSize int
	UserID   string
	Status   string
}

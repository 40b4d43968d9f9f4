package queue

import (
	"encoding/json"

	"github.com/vanmart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusNotify 订单状态通知任务
	TaskOrderStatusNotify = constants.TaskOrderStatusNotify
	// TaskMartAutoClose 活动到期自动截单任务
	TaskMartAutoClose = constants.TaskMartAutoClose
)

// OrderStatusNotifyPayload 订单状态通知任务载荷
type OrderStatusNotifyPayload struct {
	OrderID    string `json:"order_id"`
	OrderNo    string `json:"order_no"`
	UserID     string `json:"user_id"`
	MartID     string `json:"mart_id"`
	FromStatus string `json:"from_status,omitempty"`
	Status     string `json:"status"`
}

// MartAutoClosePayload 活动自动截单任务载荷
type MartAutoClosePayload struct {
	MartID string `json:"mart_id"`
}

// NewOrderStatusNotifyTask 创建订单状态通知任务
func NewOrderStatusNotifyTask(payload OrderStatusNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusNotify, body), nil
}

// NewMartAutoCloseTask 创建活动自动截单任务
func NewMartAutoCloseTask(payload MartAutoClosePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMartAutoClose, body), nil
}

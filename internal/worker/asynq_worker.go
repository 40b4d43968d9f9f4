package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/provider"
	"github.com/vanmart/internal/queue"
	"github.com/vanmart/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusNotify, c.handleOrderStatusNotify)
	mux.HandleFunc(queue.TaskMartAutoClose, c.handleMartAutoClose)
}

func (c *Consumer) handleOrderStatusNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_order_status_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_notify_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.OrderID) == "" {
		logger.Debugw("worker_order_status_notify_skip_invalid_payload", "order_no", payload.OrderNo)
		return nil
	}
	if c.MessageService == nil {
		logger.Warnw("worker_order_status_notify_skip_message_service_nil", "order_id", payload.OrderID)
		return nil
	}
	msg, err := c.MessageService.NotifyOrderStatus(ctx, payload.OrderID, payload.Status)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_status_notify_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_status_notify_failed",
			"order_id", payload.OrderID,
			"status", payload.Status,
			"error", err,
		)
		return err
	}
	logger.Debugw("worker_order_status_notified", "order_id", payload.OrderID, "message_id", msg.ID, "status", payload.Status)
	return nil
}

func (c *Consumer) handleMartAutoClose(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_mart_auto_close_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	if c.MartService == nil {
		logger.Warnw("worker_mart_auto_close_skip_mart_service_nil")
		return nil
	}
	var payload queue.MartAutoClosePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_mart_auto_close_unmarshal_failed", "error", err)
		return err
	}
	martID := strings.TrimSpace(payload.MartID)
	if martID == "" {
		closed, err := c.MartService.SweepExpiredMarts(ctx, martSweepBatchSize)
		if err != nil {
			logger.Warnw("worker_mart_sweep_failed", "error", err)
			return err
		}
		logger.Debugw("worker_mart_sweep_done", "closed", closed)
		return nil
	}
	closed, err := c.MartService.AutoCloseMart(ctx, martID)
	if err != nil {
		logger.Warnw("worker_mart_auto_close_failed", "mart_id", martID, "error", err)
		return err
	}
	logger.Debugw("worker_mart_auto_close_done", "mart_id", martID, "closed", closed)
	return nil
}

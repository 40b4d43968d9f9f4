package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/models"
	"github.com/vanmart/internal/repository"

	"github.com/google/uuid"
)

// MessageService 站内消息服务
type MessageService struct {
	messageRepo repository.MessageRepository
	orderRepo   repository.OrderRepository
}

// NewMessageService 创建消息服务
func NewMessageService(messageRepo repository.MessageRepository, orderRepo repository.OrderRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		orderRepo:   orderRepo,
	}
}

// MessageListResult 消息列表结果
type MessageListResult struct {
	Items       []models.Message
	Total       int64
	UnreadCount int64
}

// ListMessages 消息列表（附带未读数）
func (s *MessageService) ListMessages(ctx context.Context, userID, msgType string, unreadOnly bool, page, pageSize int) (*MessageListResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrForbidden
	}
	rows, total, err := s.messageRepo.List(repository.MessageListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     userID,
		Type:       strings.TrimSpace(msgType),
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	unread, err := s.messageRepo.CountUnread(userID)
	if err != nil {
		return nil, fmt.Errorf("count unread messages: %w", err)
	}
	return &MessageListResult{Items: rows, Total: total, UnreadCount: unread}, nil
}

// MarkRead 标记单条已读
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID string) error {
	affected, err := s.messageRepo.MarkRead(strings.TrimSpace(messageID), userID)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MarkAllRead 全部标记已读
func (s *MessageService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.messageRepo.MarkAllRead(userID)
}

// NotifyOrderStatus 根据订单当前状态给买家写一条站内消息（异步任务调用）
func (s *MessageService) NotifyOrderStatus(ctx context.Context, orderID, status string) (*models.Message, error) {
	order, err := s.orderRepo.GetByID(strings.TrimSpace(orderID))
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if status == "" {
		status = order.Status
	}
	message := &models.Message{
		ID:        uuid.NewString(),
		UserID:    order.UserID,
		Title:     fmt.Sprintf("订单%s", OrderStatusLabel(status)),
		Content:   orderStatusMessageContent(order, status),
		Type:      constants.MessageTypeOrder,
		RelatedID: order.ID,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return message, nil
}

func orderStatusMessageContent(order *models.Order, status string) string {
	switch status {
	case constants.OrderStatusCreated:
		return fmt.Sprintf("您的订单 %s 已提交，金额 %s 元", order.OrderNo, order.TotalAmount.String())
	case constants.OrderStatusShipped:
		return fmt.Sprintf("您的订单 %s 已发货，%s %s", order.OrderNo, order.ShippingCompany, order.ShippingNo)
	case constants.OrderStatusCanceled:
		if order.CancelReason != "" {
			return fmt.Sprintf("您的订单 %s 已取消，原因：%s", order.OrderNo, order.CancelReason)
		}
		return fmt.Sprintf("您的订单 %s 已取消", order.OrderNo)
	default:
		return fmt.Sprintf("您的订单 %s 状态更新为：%s", order.OrderNo, OrderStatusLabel(status))
	}
}

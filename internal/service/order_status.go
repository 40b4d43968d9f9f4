package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/models"
)

// orderTransitions 订单状态流转表，completed 与 canceled 为终态
var orderTransitions = map[string]map[string]bool{
	constants.OrderStatusCreated: {
		constants.OrderStatusPendingShipment: true,
		constants.OrderStatusCanceled:        true,
	},
	constants.OrderStatusPendingShipment: {
		constants.OrderStatusShipped:  true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCanceled:  true,
	},
	constants.OrderStatusDelivered: {
		constants.OrderStatusCompleted: true,
		constants.OrderStatusCanceled:  true,
	},
	constants.OrderStatusCompleted: {},
	constants.OrderStatusCanceled:  {},
}

var orderStatusLabels = map[string]string{
	constants.OrderStatusCreated:         "已下单",
	constants.OrderStatusPendingShipment: "待发货",
	constants.OrderStatusShipped:         "已发货",
	constants.OrderStatusDelivered:       "已送达",
	constants.OrderStatusCompleted:       "已完成",
	constants.OrderStatusCanceled:        "已取消",
}

// NormalizeOrderStatus 统一状态写法（大小写、空白）
func NormalizeOrderStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// IsValidOrderStatus 是否为已知订单状态
func IsValidOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

// OrderStatusLabel 状态展示名
func OrderStatusLabel(status string) string {
	if label, ok := orderStatusLabels[status]; ok {
		return label
	}
	return status
}

// ValidateTransition 校验状态流转是否合法
func ValidateTransition(from, to string) error {
	if !IsValidOrderStatus(to) {
		return ErrInvalidStatus.Detail("无效的订单状态: %s", to)
	}
	if !IsValidOrderStatus(from) {
		return ErrInvalidStatus.Detail("订单当前状态无效: %s", from)
	}
	if !orderTransitions[from][to] {
		return ErrIllegalTransition.Detail("订单状态不允许从 %s 变更为 %s", from, to)
	}
	return nil
}

// isOrderParty 操作人是否为订单买家或活动团长
func isOrderParty(actorID string, order *models.Order, mart *models.Mart) bool {
	if actorID == "" || order == nil {
		return false
	}
	if order.UserID == actorID {
		return true
	}
	return mart != nil && mart.UserID == actorID
}

// authorizeTransition 判断操作人是否可以发起该状态变更
// 买家：created/pending_shipment 可取消，delivered 可确认完成；团长：其余全部变更。
// 既是买家又是团长时取两者并集。
func authorizeTransition(actorID string, order *models.Order, mart *models.Mart, target string) error {
	if !isOrderParty(actorID, order, mart) {
		return ErrForbidden
	}
	if mart != nil && mart.UserID == actorID {
		return nil
	}
	switch target {
	case constants.OrderStatusCanceled:
		if order.Status == constants.OrderStatusCreated || order.Status == constants.OrderStatusPendingShipment {
			return nil
		}
	case constants.OrderStatusCompleted:
		if order.Status == constants.OrderStatusDelivered {
			return nil
		}
	}
	return ErrForbidden.Detail("买家无权将订单变更为%s", OrderStatusLabel(target))
}

// TransitionOptions 状态变更附带参数
type TransitionOptions struct {
	ShippingCompany string
	ShippingNo      string
	CancelReason    string
	SellerRemark    string
}

// transitionUpdates 生成状态变更需要写入的字段（不含 status）
func transitionUpdates(to string, opts TransitionOptions, now time.Time) (map[string]interface{}, error) {
	updates := map[string]interface{}{
		"updated_at": now,
	}
	switch to {
	case constants.OrderStatusShipped:
		company := strings.TrimSpace(opts.ShippingCompany)
		trackingNo := strings.TrimSpace(opts.ShippingNo)
		if company == "" || trackingNo == "" {
			return nil, ErrMissingShippingFields
		}
		updates["shipping_company"] = company
		updates["shipping_no"] = trackingNo
		updates["shipped_at"] = now
	case constants.OrderStatusDelivered:
		updates["delivered_at"] = now
	case constants.OrderStatusCompleted:
		updates["completed_at"] = now
	case constants.OrderStatusCanceled:
		updates["canceled_at"] = now
		updates["cancel_reason"] = strings.TrimSpace(opts.CancelReason)
	}
	if remark := strings.TrimSpace(opts.SellerRemark); remark != "" {
		updates["seller_remark"] = remark
	}
	return updates, nil
}

// trackDescription 生成状态轨迹描述
func trackDescription(to string, opts TransitionOptions) string {
	desc := fmt.Sprintf("订单状态更新为: %s", OrderStatusLabel(to))
	switch to {
	case constants.OrderStatusShipped:
		desc = fmt.Sprintf("%s（%s %s）", desc, strings.TrimSpace(opts.ShippingCompany), strings.TrimSpace(opts.ShippingNo))
	case constants.OrderStatusCanceled:
		if reason := strings.TrimSpace(opts.CancelReason); reason != "" {
			desc = fmt.Sprintf("%s（原因: %s）", desc, reason)
		}
	}
	return desc
}

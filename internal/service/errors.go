package service

import (
	"errors"
	"fmt"
)

// ErrorKind 业务错误分类，供接口层映射状态码
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindPrecondition ErrorKind = "precondition"
	KindValidation   ErrorKind = "validation"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal"
)

// BizError 业务错误
// Code 用于 errors.Is 比较，Message 为可直接展示的原因。
type BizError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *BizError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *BizError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，带详情的错误与对应哨兵错误相等
func (e *BizError) Is(target error) bool {
	t, ok := target.(*BizError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Detail 基于哨兵错误生成带详情的副本
func (e *BizError) Detail(format string, args ...interface{}) *BizError {
	return &BizError{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 基于哨兵错误包装底层错误
func (e *BizError) Wrap(err error) *BizError {
	return &BizError{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

func newBizError(kind ErrorKind, code, message string) *BizError {
	return &BizError{Kind: kind, Code: code, Message: message}
}

// KindOf 返回错误分类，非业务错误视为内部错误
func KindOf(err error) ErrorKind {
	var biz *BizError
	if errors.As(err, &biz) {
		return biz.Kind
	}
	return KindInternal
}

var (
	ErrMartNotFound          = newBizError(KindNotFound, "mart_not_found", "活动不存在")
	ErrOrderNotFound         = newBizError(KindNotFound, "order_not_found", "订单不存在")
	ErrMessageNotFound       = newBizError(KindNotFound, "message_not_found", "消息不存在")
	ErrMartNotOpen           = newBizError(KindPrecondition, "mart_not_open", "活动未开放下单")
	ErrMartExpired           = newBizError(KindPrecondition, "mart_expired", "活动已截止")
	ErrMartStatusInvalid     = newBizError(KindPrecondition, "mart_status_invalid", "活动状态不允许该操作")
	ErrGoodsNotFound         = newBizError(KindValidation, "goods_not_found", "商品不存在")
	ErrInsufficientStock     = newBizError(KindValidation, "insufficient_stock", "库存不足")
	ErrPurchaseLimitExceeded = newBizError(KindValidation, "purchase_limit_exceeded", "超出限购数量")
	ErrMissingShippingFields = newBizError(KindValidation, "missing_shipping_fields", "发货需要填写快递公司和快递单号")
	ErrIllegalTransition     = newBizError(KindValidation, "illegal_transition", "订单状态不允许该变更")
	ErrInvalidStatus         = newBizError(KindValidation, "invalid_status", "无效的订单状态")
	ErrInvalidOrderItem      = newBizError(KindValidation, "invalid_order_item", "订单商品参数无效")
	ErrInvalidMartInput      = newBizError(KindValidation, "invalid_mart_input", "活动参数无效")
	ErrForbidden             = newBizError(KindForbidden, "forbidden", "无权操作")
	ErrOrderInProgress       = newBizError(KindConflict, "order_in_progress", "订单正在提交中，请勿重复提交")
	ErrOrderCreateFailed     = newBizError(KindInternal, "order_create_failed", "订单创建失败")
	ErrOrderUpdateFailed     = newBizError(KindInternal, "order_update_failed", "订单更新失败")
	ErrMartCreateFailed      = newBizError(KindInternal, "mart_create_failed", "活动创建失败")
	ErrMartUpdateFailed      = newBizError(KindInternal, "mart_update_failed", "活动更新失败")
)

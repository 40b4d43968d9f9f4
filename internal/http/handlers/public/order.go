package public

import (
	"strings"

	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/http/response"
	"github.com/vanmart/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	GoodsID  string `json:"goods_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	MartID        string             `json:"mart_id" binding:"required"`
	ReceiverName  string             `json:"receiver_name" binding:"required"`
	ReceiverPhone string             `json:"receiver_phone" binding:"required"`
	Province      string             `json:"province" binding:"required"`
	City          string             `json:"city" binding:"required"`
	District      string             `json:"district" binding:"required"`
	DetailAddress string             `json:"detail_address" binding:"required"`
	BuyerRemark   string             `json:"buyer_remark" binding:"max=255"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest 订单状态变更请求
type UpdateOrderStatusRequest struct {
	Status          string `json:"status" binding:"required,oneof=created pending_shipment shipped delivered completed canceled"`
	ShippingCompany string `json:"shipping_company"`
	ShippingNo      string `json:"shipping_no"`
	CancelReason    string `json:"cancel_reason" binding:"max=255"`
	SellerRemark    string `json:"seller_remark" binding:"max=255"`
}

// CreateOrder 下单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.OrderLine{
			GoodsID:  item.GoodsID,
			Quantity: item.Quantity,
		})
	}

	order, err := h.OrderService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		BuyerID: uid,
		MartID:  req.MartID,
		Address: service.ShippingAddress{
			ReceiverName:  req.ReceiverName,
			ReceiverPhone: req.ReceiverPhone,
			Province:      req.Province,
			City:          req.City,
			District:      req.District,
			DetailAddress: req.DetailAddress,
		},
		BuyerRemark: req.BuyerRemark,
		Items:       lines,
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 订单列表
// scope=buyer（默认）查看自己的订单；scope=organizer&mart_id=... 团长查看活动订单
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := parsePageQuery(c)
	scope := strings.TrimSpace(c.DefaultQuery("scope", constants.OrderScopeBuyer))
	if scope != constants.OrderScopeBuyer && scope != constants.OrderScopeOrganizer {
		respondError(c, response.CodeBadRequest, "无效的查看视角", nil)
		return
	}

	orders, total, err := h.OrderService.ListOrders(c.Request.Context(), uid, service.OrderListQuery{
		Scope:    scope,
		MartID:   c.Query("mart_id"),
		Status:   c.Query("status"),
		OrderNo:  c.Query("order_no"),
		Province: c.Query("province"),
		City:     c.Query("city"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "订单ID无效", nil)
		return
	}

	order, err := h.OrderService.GetOrder(c.Request.Context(), uid, orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	response.Success(c, order)
}

// UpdateOrderStatus 订单状态变更（发货、确认收货、取消等）
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "订单ID无效", nil)
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	order, err := h.OrderService.TransitionOrderStatus(c.Request.Context(), service.TransitionInput{
		ActorID:         uid,
		OrderID:         orderID,
		Status:          req.Status,
		ShippingCompany: req.ShippingCompany,
		ShippingNo:      req.ShippingNo,
		CancelReason:    req.CancelReason,
		SellerRemark:    req.SellerRemark,
	})
	if err != nil {
		respondOrderUpdateError(c, err)
		return
	}

	response.Success(c, order)
}

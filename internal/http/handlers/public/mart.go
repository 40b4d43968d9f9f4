package public

import (
	"strings"
	"time"

	"github.com/vanmart/internal/http/response"
	"github.com/vanmart/internal/models"
	"github.com/vanmart/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateGoodsRequest 活动商品请求
type CreateGoodsRequest struct {
	Name          string           `json:"name" binding:"required,max=128"`
	Description   string           `json:"description"`
	Specification string           `json:"specification"`
	ImageURL      string           `json:"image_url"`
	Price         models.Money     `json:"price"`
	OriginalPrice models.NullMoney `json:"original_price"`
	Stock         int              `json:"stock" binding:"min=0"`
	PurchaseLimit *int             `json:"purchase_limit" binding:"omitempty,min=1"`
	Cost          models.NullMoney `json:"cost"`
	LaborCost     models.NullMoney `json:"labor_cost"`
	PackagingCost models.NullMoney `json:"packaging_cost"`
	SortOrder     int              `json:"sort_order"`
}

// CreateMartRequest 创建活动请求
type CreateMartRequest struct {
	Topic            string               `json:"topic" binding:"required,max=128"`
	Description      string               `json:"description"`
	SetFinishTime    bool                 `json:"set_finish_time"`
	FinishTime       *time.Time           `json:"finish_time"`
	ExpectedShipDays int                  `json:"expected_ship_days" binding:"min=0"`
	AutoConfirmDays  int                  `json:"auto_confirm_days" binding:"min=0"`
	FreightAmount    models.Money         `json:"freight_amount"`
	Goods            []CreateGoodsRequest `json:"goods" binding:"required,min=1,dive"`
}

// CreateMart 发起接龙活动
func (h *Handler) CreateMart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateMartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	goods := make([]service.CreateGoodsInput, 0, len(req.Goods))
	for _, item := range req.Goods {
		goods = append(goods, service.CreateGoodsInput{
			Name:          item.Name,
			Description:   item.Description,
			Specification: item.Specification,
			ImageURL:      item.ImageURL,
			Price:         item.Price,
			OriginalPrice: item.OriginalPrice,
			Stock:         item.Stock,
			PurchaseLimit: item.PurchaseLimit,
			Cost:          item.Cost,
			LaborCost:     item.LaborCost,
			PackagingCost: item.PackagingCost,
			SortOrder:     item.SortOrder,
		})
	}

	mart, err := h.MartService.CreateMart(c.Request.Context(), service.CreateMartInput{
		OrganizerID:      uid,
		Topic:            req.Topic,
		Description:      req.Description,
		SetFinishTime:    req.SetFinishTime,
		FinishTime:       req.FinishTime,
		ExpectedShipDays: req.ExpectedShipDays,
		AutoConfirmDays:  req.AutoConfirmDays,
		FreightAmount:    req.FreightAmount,
		Goods:            goods,
	})
	if err != nil {
		respondMartError(c, err)
		return
	}

	response.Success(c, mart)
}

// GetMart 活动详情（游客可访问，团长本人可见成本字段）
func (h *Handler) GetMart(c *gin.Context) {
	martID, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "活动ID无效", nil)
		return
	}

	mart, err := h.MartService.GetMart(c.Request.Context(), martID, optionalUserID(c))
	if err != nil {
		respondMartError(c, err)
		return
	}

	response.Success(c, mart)
}

// ListMarts 活动广场（游客可访问）
func (h *Handler) ListMarts(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	marts, total, err := h.MartService.ListMarts(c.Request.Context(), service.MartListQuery{
		Status:   c.Query("status"),
		UserID:   c.Query("user_id"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondMartError(c, err)
		return
	}

	response.SuccessWithPage(c, marts, response.BuildPagination(page, pageSize, total))
}

// ListMyMarts 我发起的活动
func (h *Handler) ListMyMarts(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := parsePageQuery(c)
	marts, total, err := h.MartService.ListMyMarts(c.Request.Context(), uid, strings.TrimSpace(c.Query("status")), page, pageSize)
	if err != nil {
		respondMartError(c, err)
		return
	}

	response.SuccessWithPage(c, marts, response.BuildPagination(page, pageSize, total))
}

// CloseMart 截单
func (h *Handler) CloseMart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	martID, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "活动ID无效", nil)
		return
	}

	mart, err := h.MartService.CloseMart(c.Request.Context(), uid, martID)
	if err != nil {
		respondMartError(c, err)
		return
	}

	response.Success(c, mart)
}

// EndMart 结束活动
func (h *Handler) EndMart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	martID, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "活动ID无效", nil)
		return
	}

	mart, advanced, err := h.MartService.EndMart(c.Request.Context(), uid, martID)
	if err != nil {
		respondMartError(c, err)
		return
	}

	response.Success(c, gin.H{
		"mart":            mart,
		"advanced_orders": advanced,
	})
}

// DeleteGoods 删除活动商品（仅团长）
func (h *Handler) DeleteGoods(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	martID, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "活动ID无效", nil)
		return
	}
	goodsID, ok := pathID(c, "goods_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "商品ID无效", nil)
		return
	}

	if err := h.MartService.DeleteGoods(c.Request.Context(), uid, martID, goodsID); err != nil {
		respondMartError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// GetMartSummary 活动统计（仅团长）
func (h *Handler) GetMartSummary(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	martID, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "活动ID无效", nil)
		return
	}

	summary, err := h.StatsService.MartSummary(c.Request.Context(), uid, martID)
	if err != nil {
		respondStatsError(c, err)
		return
	}

	response.Success(c, summary)
}

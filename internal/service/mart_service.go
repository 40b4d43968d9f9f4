package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vanmart/internal/cache"
	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/models"
	"github.com/vanmart/internal/queue"
	"github.com/vanmart/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MartService 接龙活动服务
type MartService struct {
	martRepo         repository.MartRepository
	goodsRepo        repository.GoodsRepository
	orderRepo        repository.OrderRepository
	trackRepo        repository.DeliveryTrackRepository
	queueClient      *queue.Client
	autoCloseEnabled bool
	now              func() time.Time
}

// NewMartService 创建活动服务
func NewMartService(martRepo repository.MartRepository, goodsRepo repository.GoodsRepository, orderRepo repository.OrderRepository, trackRepo repository.DeliveryTrackRepository, queueClient *queue.Client, autoCloseEnabled bool) *MartService {
	return &MartService{
		martRepo:         martRepo,
		goodsRepo:        goodsRepo,
		orderRepo:        orderRepo,
		trackRepo:        trackRepo,
		queueClient:      queueClient,
		autoCloseEnabled: autoCloseEnabled,
		now:              time.Now,
	}
}

// CreateGoodsInput 创建商品输入
type CreateGoodsInput struct {
	Name          string
	Description   string
	Specification string
	ImageURL      string
	Price         models.Money
	OriginalPrice models.NullMoney
	Stock         int
	PurchaseLimit *int
	Cost          models.NullMoney
	LaborCost     models.NullMoney
	PackagingCost models.NullMoney
	SortOrder     int
}

// CreateMartInput 创建活动输入
type CreateMartInput struct {
	OrganizerID      string
	Topic            string
	Description      string
	SetFinishTime    bool
	FinishTime       *time.Time
	ExpectedShipDays int
	AutoConfirmDays  int
	FreightAmount    models.Money
	Goods            []CreateGoodsInput
}

// CreateMart 创建活动及其商品
func (s *MartService) CreateMart(ctx context.Context, input CreateMartInput) (*models.Mart, error) {
	organizerID := strings.TrimSpace(input.OrganizerID)
	if organizerID == "" {
		return nil, ErrForbidden
	}
	topic := strings.TrimSpace(input.Topic)
	if topic == "" {
		return nil, ErrInvalidMartInput.Detail("活动主题不能为空")
	}
	if len(input.Goods) == 0 {
		return nil, ErrInvalidMartInput.Detail("活动至少包含一件商品")
	}
	now := s.now()
	if input.SetFinishTime {
		if input.FinishTime == nil || !input.FinishTime.After(now) {
			return nil, ErrInvalidMartInput.Detail("截止时间必须晚于当前时间")
		}
	}
	if input.FreightAmount.IsNegative() {
		return nil, ErrInvalidMartInput.Detail("运费不能为负数")
	}
	if input.ExpectedShipDays < 0 || input.AutoConfirmDays < 0 {
		return nil, ErrInvalidMartInput.Detail("天数不能为负数")
	}

	goods := make([]models.Goods, 0, len(input.Goods))
	for i, g := range input.Goods {
		if err := validateGoodsInput(g); err != nil {
			return nil, err
		}
		sortOrder := g.SortOrder
		if sortOrder == 0 {
			sortOrder = i
		}
		goods = append(goods, models.Goods{
			ID:            uuid.NewString(),
			Name:          strings.TrimSpace(g.Name),
			Description:   strings.TrimSpace(g.Description),
			Specification: strings.TrimSpace(g.Specification),
			ImageURL:      strings.TrimSpace(g.ImageURL),
			Price:         g.Price,
			OriginalPrice: g.OriginalPrice,
			Stock:         g.Stock,
			PurchaseLimit: g.PurchaseLimit,
			Cost:          g.Cost,
			LaborCost:     g.LaborCost,
			PackagingCost: g.PackagingCost,
			Status:        constants.GoodsStatusOnSale,
			SortOrder:     sortOrder,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	autoConfirmDays := input.AutoConfirmDays
	if autoConfirmDays == 0 {
		autoConfirmDays = 7
	}
	mart := &models.Mart{
		ID:               uuid.NewString(),
		UserID:           organizerID,
		Topic:            topic,
		Description:      strings.TrimSpace(input.Description),
		Status:           constants.MartStatusOpen,
		SetFinishTime:    input.SetFinishTime,
		ExpectedShipDays: input.ExpectedShipDays,
		AutoConfirmDays:  autoConfirmDays,
		FreightAmount:    input.FreightAmount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.SetFinishTime {
		finish := *input.FinishTime
		mart.FinishTime = &finish
	}

	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.martRepo.WithTx(tx).Create(mart, goods)
	})
	if err != nil {
		logger.Errorw("mart_create_failed", "user_id", organizerID, "error", err)
		return nil, ErrMartCreateFailed.Wrap(err)
	}

	if s.autoCloseEnabled && mart.SetFinishTime && mart.FinishTime != nil && s.queueClient != nil {
		if err := s.queueClient.EnqueueMartAutoClose(queue.MartAutoClosePayload{MartID: mart.ID}, *mart.FinishTime); err != nil {
			logger.Warnw("mart_auto_close_enqueue_failed", "mart_id", mart.ID, "error", err)
		}
	}
	logger.Infow("mart_created", "mart_id", mart.ID, "user_id", organizerID, "goods_count", len(goods))
	return mart, nil
}

func validateGoodsInput(g CreateGoodsInput) error {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		return ErrInvalidMartInput.Detail("商品名称不能为空")
	}
	if g.Price.IsNegative() {
		return ErrInvalidMartInput.Detail("商品 %s 价格不能为负数", name)
	}
	if g.Stock < 0 {
		return ErrInvalidMartInput.Detail("商品 %s 库存不能为负数", name)
	}
	if g.PurchaseLimit != nil && *g.PurchaseLimit < 1 {
		return ErrInvalidMartInput.Detail("商品 %s 限购数量至少为 1", name)
	}
	for _, part := range []models.NullMoney{g.OriginalPrice, g.Cost, g.LaborCost, g.PackagingCost} {
		if part.Valid && part.Money.IsNegative() {
			return ErrInvalidMartInput.Detail("商品 %s 金额字段不能为负数", name)
		}
	}
	return nil
}

// GetMart 活动详情（浏览次数 +1），非团长隐藏成本字段
func (s *MartService) GetMart(ctx context.Context, martID, viewerID string) (*models.Mart, error) {
	mart, err := s.martRepo.GetWithGoods(strings.TrimSpace(martID))
	if err != nil {
		return nil, fmt.Errorf("load mart: %w", err)
	}
	if mart == nil {
		return nil, ErrMartNotFound
	}
	if err := s.martRepo.IncrementBrowseCount(mart.ID); err != nil {
		logger.Warnw("mart_browse_count_increase_failed", "mart_id", mart.ID, "error", err)
	} else {
		mart.BrowseCount++
	}
	if viewerID == "" || viewerID != mart.UserID {
		for i := range mart.Goods {
			mart.Goods[i].Cost = models.NullMoney{}
			mart.Goods[i].LaborCost = models.NullMoney{}
			mart.Goods[i].PackagingCost = models.NullMoney{}
		}
	}
	return mart, nil
}

// ListMyMarts 团长的活动列表
func (s *MartService) ListMyMarts(ctx context.Context, organizerID, status string, page, pageSize int) ([]models.Mart, int64, error) {
	if strings.TrimSpace(organizerID) == "" {
		return nil, 0, ErrForbidden
	}
	return s.martRepo.List(repository.MartListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   organizerID,
		Status:   strings.TrimSpace(status),
	})
}

// MartListQuery 活动广场查询条件
type MartListQuery struct {
	Status   string
	UserID   string
	Page     int
	PageSize int
}

// ListMarts 活动广场：按状态、发起人筛选（列表不含商品，不涉及成本字段）
func (s *MartService) ListMarts(ctx context.Context, query MartListQuery) ([]models.Mart, int64, error) {
	status := strings.ToLower(strings.TrimSpace(query.Status))
	switch status {
	case "", constants.MartStatusOpen, constants.MartStatusClosed, constants.MartStatusEnded:
	default:
		return nil, 0, ErrInvalidMartInput.Detail("无效的活动状态: %s", query.Status)
	}
	return s.martRepo.List(repository.MartListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		UserID:   strings.TrimSpace(query.UserID),
		Status:   status,
	})
}

// DeleteGoods 团长删除商品；已下单的订单项快照保留，库存不做调整
func (s *MartService) DeleteGoods(ctx context.Context, actorID, martID, goodsID string) error {
	mart, err := s.loadOwnedMart(actorID, martID)
	if err != nil {
		return err
	}
	if mart.Status == constants.MartStatusEnded {
		return ErrMartStatusInvalid.Detail("活动已结束，商品不可删除")
	}
	goodsID = strings.TrimSpace(goodsID)
	affected, err := s.goodsRepo.Delete(mart.ID, goodsID)
	if err != nil {
		logger.Errorw("goods_delete_failed", "mart_id", mart.ID, "goods_id", goodsID, "error", err)
		return ErrMartUpdateFailed.Wrap(err)
	}
	if affected == 0 {
		return ErrGoodsNotFound.Detail("活动下不存在商品 %s", goodsID)
	}
	if err := cache.InvalidateMartSummary(ctx, mart.ID); err != nil {
		logger.Warnw("mart_summary_invalidate_failed", "mart_id", mart.ID, "error", err)
	}
	logger.Infow("goods_deleted", "mart_id", mart.ID, "goods_id", goodsID, "actor_id", actorID)
	return nil
}

// CloseMart 截单：停止接收新订单，已有订单继续流转
func (s *MartService) CloseMart(ctx context.Context, actorID, martID string) (*models.Mart, error) {
	mart, err := s.loadOwnedMart(actorID, martID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	affected, err := s.martRepo.UpdateStatusFrom(mart.ID, []string{constants.MartStatusOpen}, constants.MartStatusClosed, map[string]interface{}{
		"closed_at":  now,
		"updated_at": now,
	})
	if err != nil {
		return nil, ErrMartUpdateFailed.Wrap(err)
	}
	if affected == 0 {
		return nil, ErrMartStatusInvalid.Detail("活动当前状态为 %s，无法截单", mart.Status)
	}
	logger.Infow("mart_closed", "mart_id", mart.ID, "actor_id", actorID)
	return s.reload(mart.ID)
}

// EndMart 结束活动：created 订单批量推进为待发货并记录轨迹
func (s *MartService) EndMart(ctx context.Context, actorID, martID string) (*models.Mart, int, error) {
	mart, err := s.loadOwnedMart(actorID, martID)
	if err != nil {
		return nil, 0, err
	}
	var advancedIDs []string
	err = models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		martRepo := s.martRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		trackRepo := s.trackRepo.WithTx(tx)
		now := s.now()

		affected, err := martRepo.UpdateStatusFrom(mart.ID, []string{constants.MartStatusOpen, constants.MartStatusClosed}, constants.MartStatusEnded, map[string]interface{}{
			"ended_at":   now,
			"updated_at": now,
		})
		if err != nil {
			return fmt.Errorf("update mart status: %w", err)
		}
		if affected == 0 {
			return ErrMartStatusInvalid.Detail("活动已结束")
		}

		ids, err := orderRepo.LockIDsByMartAndStatus(mart.ID, constants.OrderStatusCreated)
		if err != nil {
			return fmt.Errorf("lock created orders: %w", err)
		}
		if _, err := orderRepo.AdvanceStatusByIDs(ids, constants.OrderStatusCreated, constants.OrderStatusPendingShipment); err != nil {
			return fmt.Errorf("advance orders: %w", err)
		}
		tracks := make([]models.OrderDeliveryTrack, 0, len(ids))
		for _, id := range ids {
			tracks = append(tracks, models.OrderDeliveryTrack{
				ID:          uuid.NewString(),
				OrderID:     id,
				Status:      constants.OrderStatusPendingShipment,
				Description: "活动已结束，" + trackDescription(constants.OrderStatusPendingShipment, TransitionOptions{}),
				CreatedAt:   now,
			})
		}
		if err := trackRepo.CreateBatch(tracks); err != nil {
			return fmt.Errorf("create order tracks: %w", err)
		}
		advancedIDs = ids
		return nil
	})
	if err != nil {
		var biz *BizError
		if errors.As(err, &biz) {
			return nil, 0, err
		}
		logger.Errorw("mart_end_failed", "mart_id", mart.ID, "error", err)
		return nil, 0, ErrMartUpdateFailed.Wrap(err)
	}

	if err := cache.InvalidateMartSummary(ctx, mart.ID); err != nil {
		logger.Warnw("mart_summary_invalidate_failed", "mart_id", mart.ID, "error", err)
	}
	if s.queueClient != nil {
		for _, id := range advancedIDs {
			payload := queue.OrderStatusNotifyPayload{
				OrderID:    id,
				MartID:     mart.ID,
				FromStatus: constants.OrderStatusCreated,
				Status:     constants.OrderStatusPendingShipment,
			}
			if err := s.queueClient.EnqueueOrderStatusNotify(payload); err != nil {
				logger.Warnw("order_status_notify_enqueue_failed", "order_id", id, "error", err)
			}
		}
	}
	logger.Infow("mart_ended", "mart_id", mart.ID, "actor_id", actorID, "advanced_orders", len(advancedIDs))
	updated, err := s.reload(mart.ID)
	if err != nil {
		return nil, 0, err
	}
	return updated, len(advancedIDs), nil
}

// AutoCloseMart 到期自动截单（系统任务调用），返回是否发生了截单
func (s *MartService) AutoCloseMart(ctx context.Context, martID string) (bool, error) {
	mart, err := s.martRepo.GetByID(strings.TrimSpace(martID))
	if err != nil {
		return false, fmt.Errorf("load mart: %w", err)
	}
	if mart == nil || mart.Status != constants.MartStatusOpen {
		return false, nil
	}
	now := s.now()
	if !mart.DeadlinePassed(now) {
		return false, nil
	}
	affected, err := s.martRepo.UpdateStatusFrom(mart.ID, []string{constants.MartStatusOpen}, constants.MartStatusClosed, map[string]interface{}{
		"closed_at":  now,
		"updated_at": now,
	})
	if err != nil {
		return false, fmt.Errorf("close mart: %w", err)
	}
	if affected > 0 {
		logger.Infow("mart_auto_closed", "mart_id", mart.ID, "finish_time", mart.FinishTime)
	}
	return affected > 0, nil
}

// SweepExpiredMarts 扫描已到期仍开放的活动并截单
func (s *MartService) SweepExpiredMarts(ctx context.Context, limit int) (int, error) {
	marts, err := s.martRepo.ListOpenExpired(s.now(), limit)
	if err != nil {
		return 0, fmt.Errorf("list expired marts: %w", err)
	}
	closed := 0
	for _, mart := range marts {
		ok, err := s.AutoCloseMart(ctx, mart.ID)
		if err != nil {
			logger.Warnw("mart_auto_close_failed", "mart_id", mart.ID, "error", err)
			continue
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

func (s *MartService) loadOwnedMart(actorID, martID string) (*models.Mart, error) {
	mart, err := s.martRepo.GetByID(strings.TrimSpace(martID))
	if err != nil {
		return nil, fmt.Errorf("load mart: %w", err)
	}
	if mart == nil {
		return nil, ErrMartNotFound
	}
	if strings.TrimSpace(actorID) == "" || mart.UserID != strings.TrimSpace(actorID) {
		return nil, ErrForbidden
	}
	return mart, nil
}

func (s *MartService) reload(martID string) (*models.Mart, error) {
	mart, err := s.martRepo.GetWithGoods(martID)
	if err != nil {
		return nil, fmt.Errorf("reload mart: %w", err)
	}
	if mart == nil {
		return nil, ErrMartNotFound
	}
	return mart, nil
}

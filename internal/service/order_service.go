package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
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

const (
	orderNoSuffixLength       = 8
	orderNoAlphabet           = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	defaultOrderNoMaxAttempts = 3
	defaultPlacementLockTTL   = 10 * time.Second
	defaultMaxItemsPerOrder   = 50
)

// errOrderNoConflict 订单号唯一约束冲突，触发重新生成
var errOrderNoConflict = errors.New("order no conflict")

// OrderOptions 订单服务配置
type OrderOptions struct {
	OrderNoPrefix      string
	OrderNoMaxAttempts int
	PlacementLockTTL   time.Duration
	MaxItemsPerOrder   int
}

// OrderService 订单服务
type OrderService struct {
	orderRepo         repository.OrderRepository
	martRepo          repository.MartRepository
	goodsRepo         repository.GoodsRepository
	participationRepo repository.ParticipationRepository
	trackRepo         repository.DeliveryTrackRepository
	queueClient       *queue.Client
	options           OrderOptions
	now               func() time.Time
	orderNoFn         func(prefix string, now time.Time) string
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, martRepo repository.MartRepository, goodsRepo repository.GoodsRepository, participationRepo repository.ParticipationRepository, trackRepo repository.DeliveryTrackRepository, queueClient *queue.Client, options OrderOptions) *OrderService {
	if strings.TrimSpace(options.OrderNoPrefix) == "" {
		options.OrderNoPrefix = constants.OrderNoPrefixDefault
	}
	if options.OrderNoMaxAttempts <= 0 {
		options.OrderNoMaxAttempts = defaultOrderNoMaxAttempts
	}
	if options.PlacementLockTTL <= 0 {
		options.PlacementLockTTL = defaultPlacementLockTTL
	}
	if options.MaxItemsPerOrder <= 0 {
		options.MaxItemsPerOrder = defaultMaxItemsPerOrder
	}
	return &OrderService{
		orderRepo:         orderRepo,
		martRepo:          martRepo,
		goodsRepo:         goodsRepo,
		participationRepo: participationRepo,
		trackRepo:         trackRepo,
		queueClient:       queueClient,
		options:           options,
		now:               time.Now,
		orderNoFn:         generateOrderNo,
	}
}

// ShippingAddress 收货地址快照
type ShippingAddress struct {
	ReceiverName  string
	ReceiverPhone string
	Province      string
	City          string
	District      string
	DetailAddress string
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	BuyerID     string
	MartID      string
	Address     ShippingAddress
	BuyerRemark string
	Items       []OrderLine
}

// TransitionInput 订单状态变更输入
type TransitionInput struct {
	ActorID         string
	OrderID         string
	Status          string
	ShippingCompany string
	ShippingNo      string
	CancelReason    string
	SellerRemark    string
}

// OrderListQuery 订单列表查询
type OrderListQuery struct {
	Scope    string
	MartID   string
	Status   string
	OrderNo  string
	Province string
	City     string
	Page     int
	PageSize int
}

// PlaceOrder 下单：校验活动、库存与限购，扣减库存并记录参团，全部在一个事务内完成
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	buyerID := strings.TrimSpace(input.BuyerID)
	martID := strings.TrimSpace(input.MartID)
	if buyerID == "" {
		return nil, ErrForbidden
	}
	if martID == "" {
		return nil, ErrMartNotFound
	}
	lines, err := MergeOrderLines(input.Items)
	if err != nil {
		return nil, err
	}
	if len(lines) > s.options.MaxItemsPerOrder {
		return nil, ErrInvalidOrderItem.Detail("单笔订单最多 %d 种商品", s.options.MaxItemsPerOrder)
	}
	address, err := normalizeShippingAddress(input.Address)
	if err != nil {
		return nil, err
	}

	lockToken := uuid.NewString()
	acquired, err := cache.AcquirePlacementLock(ctx, martID, buyerID, lockToken, s.options.PlacementLockTTL)
	if err != nil {
		// Redis 异常时降级为仅依赖数据库事务
		logger.Warnw("order_placement_lock_failed", "mart_id", martID, "user_id", buyerID, "error", err)
		acquired = true
		lockToken = ""
	}
	if !acquired {
		return nil, ErrOrderInProgress
	}
	if lockToken != "" {
		defer func() {
			if err := cache.ReleasePlacementLock(context.Background(), martID, buyerID, lockToken); err != nil {
				logger.Warnw("order_placement_unlock_failed", "mart_id", martID, "user_id", buyerID, "error", err)
			}
		}()
	}

	var order *models.Order
	for attempt := 1; attempt <= s.options.OrderNoMaxAttempts; attempt++ {
		order, err = s.placeOnce(ctx, buyerID, martID, address, strings.TrimSpace(input.BuyerRemark), lines)
		if !errors.Is(err, errOrderNoConflict) {
			break
		}
		logger.Warnw("order_no_conflict_retry", "mart_id", martID, "user_id", buyerID, "attempt", attempt)
	}
	if err != nil {
		var biz *BizError
		if errors.As(err, &biz) {
			return nil, err
		}
		logger.Errorw("order_place_failed", "mart_id", martID, "user_id", buyerID, "error", err)
		return nil, ErrOrderCreateFailed.Wrap(err)
	}

	if err := cache.InvalidateMartSummary(ctx, martID); err != nil {
		logger.Warnw("mart_summary_invalidate_failed", "mart_id", martID, "error", err)
	}
	s.enqueueStatusNotify(order, "")
	logger.Infow("order_placed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"mart_id", martID,
		"user_id", buyerID,
		"total_amount", order.TotalAmount.String(),
		"item_count", len(order.Items),
	)
	return order, nil
}

// placeOnce 单次下单事务
func (s *OrderService) placeOnce(ctx context.Context, buyerID, martID string, address ShippingAddress, remark string, lines []OrderLine) (*models.Order, error) {
	var created *models.Order
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		martRepo := s.martRepo.WithTx(tx)
		goodsRepo := s.goodsRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		trackRepo := s.trackRepo.WithTx(tx)
		participationRepo := s.participationRepo.WithTx(tx)
		now := s.now()

		// 共享锁：截单/结束活动需等待本事务提交后才能改状态
		mart, err := martRepo.GetByIDForShare(martID)
		if err != nil {
			return fmt.Errorf("load mart: %w", err)
		}
		if mart == nil {
			return ErrMartNotFound
		}
		// 到期自动截单后仍按“已截止”拒绝
		if mart.Status != constants.MartStatusEnded && mart.DeadlinePassed(now) {
			return ErrMartExpired.Detail("活动已于 %s 截止", mart.FinishTime.Format("2006-01-02 15:04"))
		}
		if mart.Status != constants.MartStatusOpen {
			return ErrMartNotOpen.Detail("活动当前状态为 %s，暂不接受下单", mart.Status)
		}

		goodsIDs := make([]string, 0, len(lines))
		for _, line := range lines {
			goodsIDs = append(goodsIDs, line.GoodsID)
		}
		rows, err := goodsRepo.LockByIDs(mart.ID, goodsIDs)
		if err != nil {
			return fmt.Errorf("lock goods: %w", err)
		}
		goodsMap := make(map[string]*models.Goods, len(rows))
		for i := range rows {
			goodsMap[rows[i].ID] = &rows[i]
		}

		purchased := func(ids []string) (map[string]int, error) {
			sums, err := orderRepo.SumPurchasedQuantities(buyerID, mart.ID, ids)
			if err != nil {
				return nil, fmt.Errorf("sum purchased quantities: %w", err)
			}
			return sums, nil
		}
		if err := CheckEntitlement(goodsMap, lines, purchased); err != nil {
			return err
		}

		assembled, err := AssembleOrder(goodsMap, lines, mart.FreightAmount)
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:            uuid.NewString(),
			OrderNo:       s.orderNoFn(s.options.OrderNoPrefix, now),
			UserID:        buyerID,
			MartID:        mart.ID,
			ReceiverName:  address.ReceiverName,
			ReceiverPhone: address.ReceiverPhone,
			Province:      address.Province,
			City:          address.City,
			District:      address.District,
			DetailAddress: address.DetailAddress,
			TotalAmount:   assembled.TotalAmount,
			GoodsCost:     assembled.GoodsCost,
			FreightAmount: assembled.FreightAmount,
			Status:        constants.OrderStatusCreated,
			BuyerRemark:   remark,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		items := assembled.Items
		for i := range items {
			items[i].ID = uuid.NewString()
			items[i].CreatedAt = now
		}
		if err := orderRepo.Create(order, items); err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("%w: %v", errOrderNoConflict, err)
			}
			return fmt.Errorf("create order: %w", err)
		}

		track := models.OrderDeliveryTrack{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			Status:      constants.OrderStatusCreated,
			Description: "订单已创建",
			CreatedAt:   now,
		}
		if err := trackRepo.Create(&track); err != nil {
			return fmt.Errorf("create order track: %w", err)
		}

		for _, item := range items {
			affected, err := goodsRepo.DecreaseStock(item.GoodsID, item.Quantity)
			if err != nil {
				return fmt.Errorf("decrease stock: %w", err)
			}
			if affected == 0 {
				return ErrInsufficientStock.Detail("商品 %s 库存不足", item.GoodsName)
			}
		}

		if err := participationRepo.Upsert(&models.MartParticipation{
			ID:        uuid.NewString(),
			MartID:    mart.ID,
			UserID:    buyerID,
			OrderID:   order.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("upsert participation: %w", err)
		}

		order.Items = items
		order.Tracks = []models.OrderDeliveryTrack{track}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// TransitionOrderStatus 变更订单状态（含取消回补库存），单事务内完成
func (s *OrderService) TransitionOrderStatus(ctx context.Context, input TransitionInput) (*models.Order, error) {
	target := NormalizeOrderStatus(input.Status)
	if !IsValidOrderStatus(target) {
		return nil, ErrInvalidStatus.Detail("无效的订单状态: %s", input.Status)
	}
	actorID := strings.TrimSpace(input.ActorID)
	opts := TransitionOptions{
		ShippingCompany: input.ShippingCompany,
		ShippingNo:      input.ShippingNo,
		CancelReason:    input.CancelReason,
		SellerRemark:    input.SellerRemark,
	}

	var updated *models.Order
	var fromStatus string
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		goodsRepo := s.goodsRepo.WithTx(tx)
		trackRepo := s.trackRepo.WithTx(tx)
		now := s.now()

		order, err := orderRepo.GetByID(strings.TrimSpace(input.OrderID))
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		if order == nil {
			return ErrOrderNotFound
		}
		mart, err := s.martRepo.WithTx(tx).GetByID(order.MartID)
		if err != nil {
			return fmt.Errorf("load mart: %w", err)
		}
		if !isOrderParty(actorID, order, mart) {
			return ErrForbidden
		}
		if err := ValidateTransition(order.Status, target); err != nil {
			return err
		}
		if err := authorizeTransition(actorID, order, mart, target); err != nil {
			return err
		}
		updates, err := transitionUpdates(target, opts, now)
		if err != nil {
			return err
		}

		affected, err := orderRepo.UpdateStatusFrom(order.ID, order.Status, target, updates)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if affected == 0 {
			return ErrIllegalTransition.Detail("订单状态已变更，请刷新后重试")
		}

		if target == constants.OrderStatusCanceled {
			if err := restoreOrderStock(goodsRepo, order); err != nil {
				return err
			}
		}

		if err := trackRepo.Create(&models.OrderDeliveryTrack{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			Status:      target,
			Description: trackDescription(target, opts),
			CreatedAt:   now,
		}); err != nil {
			return fmt.Errorf("create order track: %w", err)
		}

		fromStatus = order.Status
		updated, err = orderRepo.GetByID(order.ID)
		if err != nil {
			return fmt.Errorf("reload order: %w", err)
		}
		return nil
	})
	if err != nil {
		var biz *BizError
		if errors.As(err, &biz) {
			return nil, err
		}
		logger.Errorw("order_status_update_failed", "order_id", input.OrderID, "status", target, "error", err)
		return nil, ErrOrderUpdateFailed.Wrap(err)
	}

	if err := cache.InvalidateMartSummary(ctx, updated.MartID); err != nil {
		logger.Warnw("mart_summary_invalidate_failed", "mart_id", updated.MartID, "error", err)
	}
	s.enqueueStatusNotify(updated, fromStatus)
	logger.Infow("order_status_changed",
		"order_id", updated.ID,
		"order_no", updated.OrderNo,
		"from", fromStatus,
		"to", updated.Status,
		"actor_id", actorID,
	)
	return updated, nil
}

// restoreOrderStock 取消订单时按订单项回补库存与销量
func restoreOrderStock(goodsRepo *repository.GormGoodsRepository, order *models.Order) error {
	for _, item := range order.Items {
		affected, err := goodsRepo.RestoreStock(item.GoodsID, item.Quantity)
		if err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
		if affected > 0 {
			continue
		}
		goods, err := goodsRepo.GetByID(item.GoodsID)
		if err != nil {
			return fmt.Errorf("load goods: %w", err)
		}
		if goods != nil {
			return fmt.Errorf("restore stock for goods %s: sold_count %d below quantity %d", item.GoodsID, goods.SoldCount, item.Quantity)
		}
		// 商品已删除，订单项快照保留
		logger.Warnw("order_cancel_goods_missing", "order_id", order.ID, "goods_id", item.GoodsID)
	}
	return nil
}

// GetOrder 订单详情（仅买家与团长可见）
func (s *OrderService) GetOrder(ctx context.Context, actorID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(strings.TrimSpace(orderID))
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	mart, err := s.martRepo.GetByID(order.MartID)
	if err != nil {
		return nil, fmt.Errorf("load mart: %w", err)
	}
	if !isOrderParty(strings.TrimSpace(actorID), order, mart) {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders 订单列表：买家查看自己的订单；团长按活动查看全部订单
func (s *OrderService) ListOrders(ctx context.Context, actorID string, query OrderListQuery) ([]models.Order, int64, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, 0, ErrForbidden
	}
	status := NormalizeOrderStatus(query.Status)
	if status != "" && !IsValidOrderStatus(status) {
		return nil, 0, ErrInvalidStatus.Detail("无效的订单状态: %s", query.Status)
	}
	filter := repository.OrderListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		MartID:   strings.TrimSpace(query.MartID),
		Status:   status,
		OrderNo:  strings.TrimSpace(query.OrderNo),
		Province: strings.TrimSpace(query.Province),
		City:     strings.TrimSpace(query.City),
	}
	if query.Scope == constants.OrderScopeOrganizer {
		if filter.MartID == "" {
			return nil, 0, ErrInvalidMartInput.Detail("团长视角需要指定活动")
		}
		mart, err := s.martRepo.GetByID(filter.MartID)
		if err != nil {
			return nil, 0, fmt.Errorf("load mart: %w", err)
		}
		if mart == nil {
			return nil, 0, ErrMartNotFound
		}
		if mart.UserID != actorID {
			return nil, 0, ErrForbidden
		}
	} else {
		filter.UserID = actorID
	}
	return s.orderRepo.List(filter)
}

func (s *OrderService) enqueueStatusNotify(order *models.Order, fromStatus string) {
	if s.queueClient == nil || order == nil {
		return
	}
	payload := queue.OrderStatusNotifyPayload{
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		UserID:     order.UserID,
		MartID:     order.MartID,
		FromStatus: fromStatus,
		Status:     order.Status,
	}
	if err := s.queueClient.EnqueueOrderStatusNotify(payload); err != nil {
		logger.Warnw("order_status_notify_enqueue_failed", "order_id", order.ID, "status", order.Status, "error", err)
	}
}

func normalizeShippingAddress(address ShippingAddress) (ShippingAddress, error) {
	normalized := ShippingAddress{
		ReceiverName:  strings.TrimSpace(address.ReceiverName),
		ReceiverPhone: strings.TrimSpace(address.ReceiverPhone),
		Province:      strings.TrimSpace(address.Province),
		City:          strings.TrimSpace(address.City),
		District:      strings.TrimSpace(address.District),
		DetailAddress: strings.TrimSpace(address.DetailAddress),
	}
	if normalized.ReceiverName == "" || normalized.ReceiverPhone == "" {
		return ShippingAddress{}, ErrInvalidOrderItem.Detail("收货人和联系电话不能为空")
	}
	if normalized.Province == "" || normalized.City == "" || normalized.District == "" || normalized.DetailAddress == "" {
		return ShippingAddress{}, ErrInvalidOrderItem.Detail("收货地址不完整")
	}
	return normalized, nil
}

// generateOrderNo 订单号：前缀 + YYMMDD + 8 位大写字母数字
func generateOrderNo(prefix string, now time.Time) string {
	return prefix + now.Format("060102") + randAlphanumeric(orderNoSuffixLength)
}

func randAlphanumeric(length int) string {
	var b strings.Builder
	b.Grow(length)
	base := big.NewInt(int64(len(orderNoAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(orderNoAlphabet[n.Int64()])
	}
	return b.String()
}

// isDuplicateKeyError 唯一约束冲突（兼容 sqlite 与 postgres 的错误文本）
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vanmart/internal/cache"
	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/models"
	"github.com/vanmart/internal/repository"
)

// StatsService 统计服务
type StatsService struct {
	martRepo          repository.MartRepository
	orderRepo         repository.OrderRepository
	participationRepo repository.ParticipationRepository
	summaryTTL        time.Duration
}

// NewStatsService 创建统计服务
func NewStatsService(martRepo repository.MartRepository, orderRepo repository.OrderRepository, participationRepo repository.ParticipationRepository, summaryTTL time.Duration) *StatsService {
	return &StatsService{
		martRepo:          martRepo,
		orderRepo:         orderRepo,
		participationRepo: participationRepo,
		summaryTTL:        summaryTTL,
	}
}

// StatusStat 按状态统计
type StatusStat struct {
	Status string       `json:"status"`
	Count  int          `json:"count"`
	Amount models.Money `json:"amount"`
}

// GoodsStat 商品销量统计
type GoodsStat struct {
	GoodsID   string       `json:"goods_id"`
	GoodsName string       `json:"goods_name"`
	Quantity  int          `json:"quantity"`
	Amount    models.Money `json:"amount"`
}

// RegionStat 区域统计
type RegionStat struct {
	Province   string       `json:"province"`
	City       string       `json:"city"`
	OrderCount int          `json:"order_count"`
	Amount     models.Money `json:"amount"`
}

// MartSummary 活动统计摘要（金额与数量均不含已取消订单）
type MartSummary struct {
	MartID           string       `json:"mart_id"`
	Topic            string       `json:"topic"`
	Status           string       `json:"status"`
	BrowseCount      int64        `json:"browse_count"`
	ParticipantCount int64        `json:"participant_count"`
	OrderCount       int          `json:"order_count"`
	TotalAmount      models.Money `json:"total_amount"`
	GoodsCost        models.Money `json:"goods_cost"`
	Profit           models.Money `json:"profit"`
	ByStatus         []StatusStat `json:"by_status"`
	Goods            []GoodsStat  `json:"goods"`
	Regions          []RegionStat `json:"regions"`
	GeneratedAt      time.Time    `json:"generated_at"`
}

// UserOrderStats 用户订单统计
type UserOrderStats struct {
	OrderCount        int            `json:"order_count"`
	TotalAmount       models.Money   `json:"total_amount"`
	ByStatus          []StatusStat   `json:"by_status"`
	ParticipatedMarts int64          `json:"participated_marts"`
	RecentOrders      []models.Order `json:"recent_orders"`
}

// MartSummary 活动统计（仅团长可见，结果短时缓存）
func (s *StatsService) MartSummary(ctx context.Context, actorID, martID string) (*MartSummary, error) {
	mart, err := s.martRepo.GetByID(strings.TrimSpace(martID))
	if err != nil {
		return nil, fmt.Errorf("load mart: %w", err)
	}
	if mart == nil {
		return nil, ErrMartNotFound
	}
	if actorID == "" || mart.UserID != actorID {
		return nil, ErrForbidden
	}

	var cached MartSummary
	if hit, err := cache.GetMartSummary(ctx, mart.ID, &cached); err != nil {
		logger.Warnw("mart_summary_cache_get_failed", "mart_id", mart.ID, "error", err)
	} else if hit {
		return &cached, nil
	}

	orders, err := s.orderRepo.ListByMart(mart.ID)
	if err != nil {
		return nil, fmt.Errorf("list mart orders: %w", err)
	}
	participants, err := s.participationRepo.CountByMart(mart.ID)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	summary := buildMartSummary(mart, orders, participants)
	summary.GeneratedAt = time.Now()

	if err := cache.SetMartSummary(ctx, mart.ID, summary, s.summaryTTL); err != nil {
		logger.Warnw("mart_summary_cache_set_failed", "mart_id", mart.ID, "error", err)
	}
	return summary, nil
}

func buildMartSummary(mart *models.Mart, orders []models.Order, participants int64) *MartSummary {
	summary := &MartSummary{
		MartID:           mart.ID,
		Topic:            mart.Topic,
		Status:           mart.Status,
		BrowseCount:      mart.BrowseCount,
		ParticipantCount: participants,
		TotalAmount:      models.ZeroMoney(),
		GoodsCost:        models.ZeroMoney(),
	}
	goodsIndex := map[string]*GoodsStat{}
	regionIndex := map[string]*RegionStat{}
	var goodsOrder []string
	var regionOrder []string

	for _, order := range orders {
		if order.Status == constants.OrderStatusCanceled {
			continue
		}
		summary.OrderCount++
		summary.TotalAmount = summary.TotalAmount.Add(order.TotalAmount)
		summary.GoodsCost = summary.GoodsCost.Add(order.GoodsCost)

		for _, item := range order.Items {
			stat, ok := goodsIndex[item.GoodsID]
			if !ok {
				stat = &GoodsStat{GoodsID: item.GoodsID, GoodsName: item.GoodsName, Amount: models.ZeroMoney()}
				goodsIndex[item.GoodsID] = stat
				goodsOrder = append(goodsOrder, item.GoodsID)
			}
			stat.Quantity += item.Quantity
			stat.Amount = stat.Amount.Add(item.Subtotal)
		}

		key := order.Province + "-" + order.City
		region, ok := regionIndex[key]
		if !ok {
			region = &RegionStat{Province: order.Province, City: order.City, Amount: models.ZeroMoney()}
			regionIndex[key] = region
			regionOrder = append(regionOrder, key)
		}
		region.OrderCount++
		region.Amount = region.Amount.Add(order.TotalAmount)
	}
	summary.Profit = summary.TotalAmount.Sub(summary.GoodsCost)
	summary.ByStatus = groupByStatus(orders)

	summary.Goods = make([]GoodsStat, 0, len(goodsOrder))
	for _, id := range goodsOrder {
		summary.Goods = append(summary.Goods, *goodsIndex[id])
	}
	sort.SliceStable(summary.Goods, func(i, j int) bool {
		return summary.Goods[i].Quantity > summary.Goods[j].Quantity
	})

	summary.Regions = make([]RegionStat, 0, len(regionOrder))
	for _, key := range regionOrder {
		summary.Regions = append(summary.Regions, *regionIndex[key])
	}
	sort.SliceStable(summary.Regions, func(i, j int) bool {
		return summary.Regions[i].OrderCount > summary.Regions[j].OrderCount
	})
	return summary
}

// groupByStatus 按状态汇总（包含已取消），按状态流转顺序输出
func groupByStatus(orders []models.Order) []StatusStat {
	index := map[string]*StatusStat{}
	for _, order := range orders {
		stat, ok := index[order.Status]
		if !ok {
			stat = &StatusStat{Status: order.Status, Amount: models.ZeroMoney()}
			index[order.Status] = stat
		}
		stat.Count++
		stat.Amount = stat.Amount.Add(order.TotalAmount)
	}
	result := make([]StatusStat, 0, len(index))
	for _, status := range []string{
		constants.OrderStatusCreated,
		constants.OrderStatusPendingShipment,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
		constants.OrderStatusCompleted,
		constants.OrderStatusCanceled,
	} {
		if stat, ok := index[status]; ok {
			result = append(result, *stat)
		}
	}
	return result
}

// UserOrderStats 当前用户的订单统计
func (s *StatsService) UserOrderStats(ctx context.Context, userID string) (*UserOrderStats, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrForbidden
	}
	orders, err := s.orderRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	participated, err := s.participationRepo.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("count participations: %w", err)
	}
	recent, err := s.orderRepo.ListRecentByUser(userID, 5)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	stats := &UserOrderStats{
		OrderCount:        len(orders),
		TotalAmount:       models.ZeroMoney(),
		ByStatus:          groupByStatus(orders),
		ParticipatedMarts: participated,
		RecentOrders:      recent,
	}
	for _, order := range orders {
		stats.TotalAmount = stats.TotalAmount.Add(order.TotalAmount)
	}
	return stats, nil
}

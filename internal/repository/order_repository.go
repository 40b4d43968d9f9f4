package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id string) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	SumPurchasedQuantities(userID, martID string, goodsIDs []string) (map[string]int, error)
	UpdateStatusFrom(id, from, to string, updates map[string]interface{}) (int64, error)
	LockIDsByMartAndStatus(martID, status string) ([]string, error)
	AdvanceStatusByIDs(ids []string, from, to string) (int64, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	ListByMart(martID string) ([]models.Order, error)
	ListRecentByUser(userID string, limit int) ([]models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) withDetail(query *gorm.DB) *gorm.DB {
	return query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc, id asc")
	}).Preload("Tracks", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc, id asc")
	})
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	// 关联字段由调用方显式写入，避免 gorm 级联保存
	if err := r.db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取订单（含订单项与轨迹）
func (r *GormOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.withDetail(r.db).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	if err := r.withDetail(r.db).Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// SumPurchasedQuantities 统计买家在活动内各商品的已购数量（排除已取消订单）
func (r *GormOrderRepository) SumPurchasedQuantities(userID, martID string, goodsIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(goodsIDs))
	if userID == "" || martID == "" || len(goodsIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		GoodsID  string
		Quantity int64
	}
	if err := r.db.Model(&models.OrderItem{}).
		Select("order_items.goods_id AS goods_id, COALESCE(SUM(order_items.quantity), 0) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.mart_id = ? AND orders.status <> ?", userID, martID, constants.OrderStatusCanceled).
		Where("order_items.goods_id IN ?", goodsIDs).
		Group("order_items.goods_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.GoodsID] = int(row.Quantity)
	}
	return result, nil
}

// UpdateStatusFrom 仅当订单处于 from 状态时更新为 to，返回受影响行数
func (r *GormOrderRepository) UpdateStatusFrom(id, from, to string, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// LockIDsByMartAndStatus 锁定活动下指定状态的订单并返回 ID
func (r *GormOrderRepository) LockIDsByMartAndStatus(martID, status string) ([]string, error) {
	var ids []string
	if err := r.db.Model(&models.Order{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("mart_id = ? AND status = ?", martID, status).
		Order("created_at asc").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AdvanceStatusByIDs 批量推进订单状态（仅更新仍处于 from 的订单）
func (r *GormOrderRepository) AdvanceStatusByIDs(ids []string, from, to string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Order{}).
		Where("id IN ? AND status = ?", ids, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// List 订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.MartID != "" {
		query = query.Where("mart_id = ?", filter.MartID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where(containsCondition(r.db, "order_no"), containsArg(orderNo))
	}
	if filter.Province != "" {
		query = query.Where("province = ?", filter.Province)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Items").Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByMart 活动下全部订单（含订单项，用于统计）
func (r *GormOrderRepository) ListByMart(martID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").
		Where("mart_id = ?", martID).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser 买家全部订单（不含订单项，用于统计）
func (r *GormOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListRecentByUser 买家最近订单
func (r *GormOrderRepository) ListRecentByUser(userID string, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	var orders []models.Order
	if err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

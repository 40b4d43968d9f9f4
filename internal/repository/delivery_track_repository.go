package repository

import (
	"github.com/vanmart/internal/models"

	"gorm.io/gorm"
)

// DeliveryTrackRepository 订单轨迹数据访问接口（只追加）
type DeliveryTrackRepository interface {
	Create(track *models.OrderDeliveryTrack) error
	CreateBatch(tracks []models.OrderDeliveryTrack) error
	ListByOrder(orderID string) ([]models.OrderDeliveryTrack, error)
	WithTx(tx *gorm.DB) *GormDeliveryTrackRepository
}

// GormDeliveryTrackRepository GORM 实现
type GormDeliveryTrackRepository struct {
	db *gorm.DB
}

// NewDeliveryTrackRepository 创建轨迹仓库
func NewDeliveryTrackRepository(db *gorm.DB) *GormDeliveryTrackRepository {
	return &GormDeliveryTrackRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDeliveryTrackRepository) WithTx(tx *gorm.DB) *GormDeliveryTrackRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryTrackRepository{db: tx}
}

// Create 追加一条轨迹
func (r *GormDeliveryTrackRepository) Create(track *models.OrderDeliveryTrack) error {
	return r.db.Create(track).Error
}

// CreateBatch 批量追加轨迹
func (r *GormDeliveryTrackRepository) CreateBatch(tracks []models.OrderDeliveryTrack) error {
	if len(tracks) == 0 {
		return nil
	}
	return r.db.Create(&tracks).Error
}

// ListByOrder 订单轨迹（按时间正序）
func (r *GormDeliveryTrackRepository) ListByOrder(orderID string) ([]models.OrderDeliveryTrack, error) {
	var rows []models.OrderDeliveryTrack
	if err := r.db.Where("order_id = ?", orderID).Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

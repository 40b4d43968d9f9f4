package repository

import (
	"time"

	"github.com/vanmart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParticipationRepository 参团记录数据访问接口
type ParticipationRepository interface {
	Upsert(row *models.MartParticipation) error
	GetByMartAndUser(martID, userID string) (*models.MartParticipation, error)
	CountByMart(martID string) (int64, error)
	CountByUser(userID string) (int64, error)
	WithTx(tx *gorm.DB) *GormParticipationRepository
}

// GormParticipationRepository GORM 实现
type GormParticipationRepository struct {
	db *gorm.DB
}

// NewParticipationRepository 创建参团记录仓库
func NewParticipationRepository(db *gorm.DB) *GormParticipationRepository {
	return &GormParticipationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormParticipationRepository) WithTx(tx *gorm.DB) *GormParticipationRepository {
	if tx == nil {
		return r
	}
	return &GormParticipationRepository{db: tx}
}

// Upsert 以 (mart_id, user_id) 为键插入或更新最近订单
func (r *GormParticipationRepository) Upsert(row *models.MartParticipation) error {
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mart_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"order_id", "updated_at"}),
	}).Create(row).Error
}

// GetByMartAndUser 查询参团记录
func (r *GormParticipationRepository) GetByMartAndUser(martID, userID string) (*models.MartParticipation, error) {
	var rows []models.MartParticipation
	if err := r.db.Where("mart_id = ? AND user_id = ?", martID, userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CountByMart 活动参团人数
func (r *GormParticipationRepository) CountByMart(martID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.MartParticipation{}).Where("mart_id = ?", martID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByUser 用户参与的活动数
func (r *GormParticipationRepository) CountByUser(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.MartParticipation{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

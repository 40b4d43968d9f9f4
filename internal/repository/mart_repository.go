package repository

import (
	"errors"
	"time"

	"github.com/vanmart/internal/constants"
	"github.com/vanmart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MartRepository 活动数据访问接口
type MartRepository interface {
	Create(mart *models.Mart, goods []models.Goods) error
	GetByID(id string) (*models.Mart, error)
	GetByIDForShare(id string) (*models.Mart, error)
	GetWithGoods(id string) (*models.Mart, error)
	List(filter MartListFilter) ([]models.Mart, int64, error)
	IncrementBrowseCount(id string) error
	UpdateStatusFrom(id string, from []string, to string, updates map[string]interface{}) (int64, error)
	ListOpenExpired(now time.Time, limit int) ([]models.Mart, error)
	WithTx(tx *gorm.DB) *GormMartRepository
}

// GormMartRepository GORM 实现
type GormMartRepository struct {
	db *gorm.DB
}

// NewMartRepository 创建活动仓库
func NewMartRepository(db *gorm.DB) *GormMartRepository {
	return &GormMartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMartRepository) WithTx(tx *gorm.DB) *GormMartRepository {
	if tx == nil {
		return r
	}
	return &GormMartRepository{db: tx}
}

// Create 创建活动与商品
func (r *GormMartRepository) Create(mart *models.Mart, goods []models.Goods) error {
	if err := r.db.Omit(clause.Associations).Create(mart).Error; err != nil {
		return err
	}
	for i := range goods {
		goods[i].MartID = mart.ID
	}
	if len(goods) > 0 {
		if err := r.db.Create(&goods).Error; err != nil {
			return err
		}
	}
	mart.Goods = goods
	return nil
}

// GetByID 根据 ID 获取活动
func (r *GormMartRepository) GetByID(id string) (*models.Mart, error) {
	var mart models.Mart
	if err := r.db.Where("id = ?", id).First(&mart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mart, nil
}

// GetByIDForShare 读取活动并加共享锁（SELECT ... FOR SHARE）
// 下单事务持有共享锁期间，截单/结束活动的状态更新需等待其提交。
func (r *GormMartRepository) GetByIDForShare(id string) (*models.Mart, error) {
	var mart models.Mart
	if err := r.db.Clauses(clause.Locking{Strength: "SHARE"}).Where("id = ?", id).First(&mart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mart, nil
}

// GetWithGoods 获取活动及其商品（按排序）
func (r *GormMartRepository) GetWithGoods(id string) (*models.Mart, error) {
	var mart models.Mart
	err := r.db.Preload("Goods", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order asc, created_at asc")
	}).Where("id = ?", id).First(&mart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mart, nil
}

// List 活动列表
func (r *GormMartRepository) List(filter MartListFilter) ([]models.Mart, int64, error) {
	query := r.db.Model(&models.Mart{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var marts []models.Mart
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at desc").Find(&marts).Error; err != nil {
		return nil, 0, err
	}
	return marts, total, nil
}

// IncrementBrowseCount 浏览次数 +1
func (r *GormMartRepository) IncrementBrowseCount(id string) error {
	return r.db.Model(&models.Mart{}).
		Where("id = ?", id).
		UpdateColumn("browse_count", gorm.Expr("browse_count + 1")).Error
}

// UpdateStatusFrom 仅当当前状态属于 from 时更新状态，返回受影响行数
func (r *GormMartRepository) UpdateStatusFrom(id string, from []string, to string, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	result := r.db.Model(&models.Mart{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListOpenExpired 查询已过截止时间但仍开放的活动
func (r *GormMartRepository) ListOpenExpired(now time.Time, limit int) ([]models.Mart, error) {
	var marts []models.Mart
	query := r.db.Where("status = ? AND set_finish_time = ? AND finish_time IS NOT NULL AND finish_time < ?", constants.MartStatusOpen, true, now).
		Order("finish_time asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&marts).Error; err != nil {
		return nil, err
	}
	return marts, nil
}

package repository

import (
	"errors"

	"github.com/vanmart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoodsRepository 商品数据访问接口
type GoodsRepository interface {
	GetByID(id string) (*models.Goods, error)
	ListByMart(martID string) ([]models.Goods, error)
	LockByIDs(martID string, ids []string) ([]models.Goods, error)
	DecreaseStock(id string, quantity int) (int64, error)
	RestoreStock(id string, quantity int) (int64, error)
	Delete(martID, id string) (int64, error)
	WithTx(tx *gorm.DB) *GormGoodsRepository
}

// GormGoodsRepository GORM 实现
type GormGoodsRepository struct {
	db *gorm.DB
}

// NewGoodsRepository 创建商品仓库
func NewGoodsRepository(db *gorm.DB) *GormGoodsRepository {
	return &GormGoodsRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGoodsRepository) WithTx(tx *gorm.DB) *GormGoodsRepository {
	if tx == nil {
		return r
	}
	return &GormGoodsRepository{db: tx}
}

// GetByID 根据 ID 获取商品
func (r *GormGoodsRepository) GetByID(id string) (*models.Goods, error) {
	var goods models.Goods
	if err := r.db.Where("id = ?", id).First(&goods).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &goods, nil
}

// ListByMart 获取活动下所有商品
func (r *GormGoodsRepository) ListByMart(martID string) ([]models.Goods, error) {
	var rows []models.Goods
	if err := r.db.Where("mart_id = ?", martID).
		Order("sort_order asc, created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LockByIDs 锁定活动下指定商品行（SELECT ... FOR UPDATE），按 id 排序加锁
func (r *GormGoodsRepository) LockByIDs(martID string, ids []string) ([]models.Goods, error) {
	if len(ids) == 0 {
		return []models.Goods{}, nil
	}
	var rows []models.Goods
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("mart_id = ? AND id IN ?", martID, ids).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DecreaseStock 扣减库存并累加销量，库存不足时不更新
func (r *GormGoodsRepository) DecreaseStock(id string, quantity int) (int64, error) {
	if id == "" || quantity <= 0 {
		return 0, errors.New("invalid goods stock decrease params")
	}
	result := r.db.Model(&models.Goods{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"sold_count": gorm.Expr("sold_count + ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RestoreStock 回补库存并扣减销量（取消订单）
func (r *GormGoodsRepository) RestoreStock(id string, quantity int) (int64, error) {
	if id == "" || quantity <= 0 {
		return 0, errors.New("invalid goods stock restore params")
	}
	result := r.db.Model(&models.Goods{}).
		Where("id = ? AND sold_count >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", quantity),
			"sold_count": gorm.Expr("sold_count - ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete 删除活动下的商品，订单项快照不受影响
func (r *GormGoodsRepository) Delete(martID, id string) (int64, error) {
	result := r.db.Where("mart_id = ? AND id = ?", martID, id).Delete(&models.Goods{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

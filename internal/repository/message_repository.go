package repository

import (
	"github.com/vanmart/internal/models"

	"gorm.io/gorm"
)

// MessageRepository 站内消息数据访问接口
type MessageRepository interface {
	Create(message *models.Message) error
	List(filter MessageListFilter) ([]models.Message, int64, error)
	CountUnread(userID string) (int64, error)
	MarkRead(id, userID string) (int64, error)
	MarkAllRead(userID string) (int64, error)
}

// GormMessageRepository GORM 实现
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息仓库
func NewMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create 创建消息
func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// List 消息列表
func (r *GormMessageRepository) List(filter MessageListFilter) ([]models.Message, int64, error) {
	query := r.db.Model(&models.Message{}).Where("user_id = ?", filter.UserID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Message
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountUnread 未读消息数
func (r *GormMessageRepository) CountUnread(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Message{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead 标记单条消息已读
func (r *GormMessageRepository) MarkRead(id, userID string) (int64, error) {
	result := r.db.Model(&models.Message{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// MarkAllRead 全部标记已读
func (r *GormMessageRepository) MarkAllRead(userID string) (int64, error) {
	result := r.db.Model(&models.Message{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

package repository

import (
	"errors"

	"github.com/tokogaya/backend/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	ListSelectedByUser(userID uint) ([]models.CartItem, error)
	GetByUserAndStock(userID, stockID uint) (*models.CartItem, error)
	Upsert(item *models.CartItem) error
	UpdateSelection(userID uint, itemIDs []uint, selected bool) error
	DeleteByIDs(ids []uint) error
	DeleteByUserAndStock(userID, stockID uint) error
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser 获取用户购物车项
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Preload("Stock").
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListSelectedByUser 获取勾选进入结算的购物车项
func (r *GormCartRepository) ListSelectedByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Preload("Stock").
		Where("user_id = ? AND is_selected = ?", userID, true).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByUserAndStock 获取指定规格的购物车项
func (r *GormCartRepository) GetByUserAndStock(userID, stockID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("user_id = ? AND stock_id = ?", userID, stockID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert 添加或更新购物车项
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	var existing models.CartItem
	err := r.db.Where("user_id = ? AND stock_id = ?", item.UserID, item.StockID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity":    item.Quantity,
		"total_price": item.TotalPrice,
		"is_selected": item.IsSelected,
	}
	if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
		return err
	}
	item.ID = existing.ID
	return nil
}

// UpdateSelection 批量更新勾选状态
func (r *GormCartRepository) UpdateSelection(userID uint, itemIDs []uint, selected bool) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND id IN ?", userID, itemIDs).
		UpdateColumn("is_selected", selected).Error
}

// DeleteByIDs 删除购物车项（结算后清理勾选行）
func (r *GormCartRepository) DeleteByIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&models.CartItem{}).Error
}

// DeleteByUserAndStock 删除购物车项
func (r *GormCartRepository) DeleteByUserAndStock(userID, stockID uint) error {
	return r.db.Where("user_id = ? AND stock_id = ?", userID, stockID).Delete(&models.CartItem{}).Error
}

// ClearByUser 清空购物车
func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

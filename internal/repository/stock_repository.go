package repository

import (
	"errors"

	"github.com/tokogaya/backend/internal/models"

	"gorm.io/gorm"
)

// StockRepository 库存规格数据访问接口
type StockRepository interface {
	GetByID(id uint) (*models.Stock, error)
	ListByIDs(ids []uint) ([]models.Stock, error)
	ListByProduct(productID uint, onlyActive bool) ([]models.Stock, error)
	Create(stock *models.Stock) error
	Update(stock *models.Stock) error
	DecrementQuantity(stockID uint, quantity int) (int64, error)
	RestoreQuantity(stockID uint, quantity int) error
	WithTx(tx *gorm.DB) StockRepository
}

// GormStockRepository GORM 实现
type GormStockRepository struct {
	db *gorm.DB
}

// NewStockRepository 创建库存仓库
func NewStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockRepository) WithTx(tx *gorm.DB) StockRepository {
	if tx == nil {
		return r
	}
	return &GormStockRepository{db: tx}
}

// GetByID 根据 ID 获取库存规格
func (r *GormStockRepository) GetByID(id uint) (*models.Stock, error) {
	if id == 0 {
		return nil, errors.New("invalid stock id")
	}
	var stock models.Stock
	if err := r.db.Preload("Product").First(&stock, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}

// ListByIDs 批量获取库存规格
func (r *GormStockRepository) ListByIDs(ids []uint) ([]models.Stock, error) {
	if len(ids) == 0 {
		return []models.Stock{}, nil
	}
	var stocks []models.Stock
	if err := r.db.Where("id IN ?", ids).Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// ListByProduct 根据商品获取库存规格列表
func (r *GormStockRepository) ListByProduct(productID uint, onlyActive bool) ([]models.Stock, error) {
	if productID == 0 {
		return nil, errors.New("invalid product id")
	}
	query := r.db.Model(&models.Stock{}).Where("product_id = ?", productID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var stocks []models.Stock
	if err := query.Order("id asc").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// Create 创建库存规格
func (r *GormStockRepository) Create(stock *models.Stock) error {
	if stock == nil {
		return errors.New("stock is nil")
	}
	return r.db.Create(stock).Error
}

// Update 更新库存规格
func (r *GormStockRepository) Update(stock *models.Stock) error {
	if stock == nil {
		return errors.New("stock is nil")
	}
	return r.db.Save(stock).Error
}

// DecrementQuantity 条件扣减库存；quantity >= n 时原子扣减，返回影响行数（0 表示库存不足）
func (r *GormStockRepository) DecrementQuantity(stockID uint, quantity int) (int64, error) {
	if stockID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock decrement params")
	}
	result := r.db.Model(&models.Stock{}).
		Where("id = ? AND quantity >= ?", stockID, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RestoreQuantity 回补库存（取消待支付订单时使用）
func (r *GormStockRepository) RestoreQuantity(stockID uint, quantity int) error {
	if stockID == 0 || quantity <= 0 {
		return errors.New("invalid stock restore params")
	}
	return r.db.Model(&models.Stock{}).
		Where("id = ?", stockID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

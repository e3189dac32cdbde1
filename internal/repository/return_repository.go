package repository

import (
	"errors"

	"github.com/tokogaya/backend/internal/models"

	"gorm.io/gorm"
)

// ReturnRepository 退货/退款数据访问接口
type ReturnRepository interface {
	CreateReturn(ro *models.ReturnOrder) error
	GetReturnByID(id uint) (*models.ReturnOrder, error)
	GetReturnByOrderID(orderID uint) (*models.ReturnOrder, error)
	ListReturns(filter ReturnListFilter) ([]models.ReturnOrder, int64, error)
	UpdateReturn(ro *models.ReturnOrder) error

	CreateRefund(ro *models.RefundOrder) error
	GetRefundByID(id uint) (*models.RefundOrder, error)
	GetRefundByReturnID(returnOrderID uint) (*models.RefundOrder, error)
	UpdateRefund(ro *models.RefundOrder) error

	WithTx(tx *gorm.DB) ReturnRepository
}

// ReturnListFilter 退货申请列表筛选
type ReturnListFilter struct {
	UserID   uint
	Status   string
	Page     int
	PageSize int
}

// GormReturnRepository GORM 实现
type GormReturnRepository struct {
	db *gorm.DB
}

// NewReturnRepository 创建退货退款仓库
func NewReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReturnRepository) WithTx(tx *gorm.DB) ReturnRepository {
	if tx == nil {
		return r
	}
	return &GormReturnRepository{db: tx}
}

// CreateReturn 创建退货申请；order_id 唯一索引保证每单至多一次
func (r *GormReturnRepository) CreateReturn(ro *models.ReturnOrder) error {
	return r.db.Create(ro).Error
}

// GetReturnByID 获取退货申请
func (r *GormReturnRepository) GetReturnByID(id uint) (*models.ReturnOrder, error) {
	var ro models.ReturnOrder
	if err := r.db.First(&ro, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ro, nil
}

// GetReturnByOrderID 获取订单的退货申请
func (r *GormReturnRepository) GetReturnByOrderID(orderID uint) (*models.ReturnOrder, error) {
	var ro models.ReturnOrder
	if err := r.db.Where("order_id = ?", orderID).First(&ro).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ro, nil
}

// ListReturns 退货申请列表
func (r *GormReturnRepository) ListReturns(filter ReturnListFilter) ([]models.ReturnOrder, int64, error) {
	query := r.db.Model(&models.ReturnOrder{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var returns []models.ReturnOrder
	if err := query.Order("id desc").Find(&returns).Error; err != nil {
		return nil, 0, err
	}
	return returns, total, nil
}

// UpdateReturn 更新退货申请
func (r *GormReturnRepository) UpdateReturn(ro *models.ReturnOrder) error {
	return r.db.Save(ro).Error
}

// CreateRefund 创建退款申请；return_order_id 唯一索引保证每次退货至多一次
func (r *GormReturnRepository) CreateRefund(ro *models.RefundOrder) error {
	return r.db.Create(ro).Error
}

// GetRefundByID 获取退款申请
func (r *GormReturnRepository) GetRefundByID(id uint) (*models.RefundOrder, error) {
	var ro models.RefundOrder
	if err := r.db.First(&ro, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ro, nil
}

// GetRefundByReturnID 获取退货申请对应的退款申请
func (r *GormReturnRepository) GetRefundByReturnID(returnOrderID uint) (*models.RefundOrder, error) {
	var ro models.RefundOrder
	if err := r.db.Where("return_order_id = ?", returnOrderID).First(&ro).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ro, nil
}

// UpdateRefund 更新退款申请
func (r *GormReturnRepository) UpdateRefund(ro *models.RefundOrder) error {
	return r.db.Save(ro).Error
}

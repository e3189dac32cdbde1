package repository

import (
	"github.com/tokogaya/backend/internal/models"

	"gorm.io/gorm"
)

// CouponUserRepository 优惠券核销记录数据访问接口
type CouponUserRepository interface {
	Create(record *models.CouponUser) error
	Exists(couponID, userID uint) (bool, error)
	ListByOrderID(orderID uint) ([]models.CouponUser, error)
	WithTx(tx *gorm.DB) CouponUserRepository
}

// GormCouponUserRepository GORM 实现
type GormCouponUserRepository struct {
	db *gorm.DB
}

// NewCouponUserRepository 创建优惠券核销仓库
func NewCouponUserRepository(db *gorm.DB) *GormCouponUserRepository {
	return &GormCouponUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponUserRepository) WithTx(tx *gorm.DB) CouponUserRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUserRepository{db: tx}
}

// Create 写入核销记录；(coupon_id, user_id) 唯一索引冲突由调用方通过 IsDuplicateKeyError 识别
func (r *GormCouponUserRepository) Create(record *models.CouponUser) error {
	return r.db.Create(record).Error
}

// Exists 判断用户是否已核销过该券
func (r *GormCouponUserRepository) Exists(couponID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.CouponUser{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByOrderID 获取订单核销记录
func (r *GormCouponUserRepository) ListByOrderID(orderID uint) ([]models.CouponUser, error) {
	var records []models.CouponUser
	if err := r.db.Where("order_id = ?", orderID).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

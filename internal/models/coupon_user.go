package models

import (
	"time"
)

// CouponUser 优惠券核销记录；(coupon_id, user_id) 唯一索引在存储层保证限量券不可重复核销
type CouponUser struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                  // 主键
	CouponID  uint      `gorm:"not null;uniqueIndex:idx_coupon_user" json:"coupon_id"` // 优惠券ID
	UserID    uint      `gorm:"not null;uniqueIndex:idx_coupon_user" json:"user_id"`   // 用户ID
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                        // 订单ID
	CreatedAt time.Time `gorm:"index" json:"created_at"`                               // 核销时间
}

// TableName 指定表名
func (CouponUser) TableName() string {
	return "coupon_users"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券（签发后不可变：前缀为查询键，密文为持有凭证）
type Coupon struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Prefix        string         `gorm:"type:varchar(8);uniqueIndex;not null" json:"prefix"`        // 8 位查询前缀
	Code          string         `gorm:"not null" json:"-"`                                         // 持有凭证明文（不返回给前端）
	Name          string         `gorm:"not null" json:"name"`                                      // 名称
	DiscountValue int            `gorm:"not null;default:0" json:"discount_value"`                  // 折扣百分比（公开券）
	MinPurchase   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_purchase"` // 最低消费门槛
	MaxPurchase   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_purchase"` // 固定抵扣上限（私有券的抵扣金额）
	IsPrivate     bool           `gorm:"not null;default:false" json:"is_private"`                  // 私有券（固定金额，可与公开券叠加）
	IsLimited     bool           `gorm:"not null;default:false" json:"is_limited"`                  // 每个账号限用一次
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`                    // 是否启用
	StartsAt      *time.Time     `gorm:"index" json:"starts_at"`                                    // 生效时间
	EndsAt        *time.Time     `gorm:"index" json:"ends_at"`                                      // 失效时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

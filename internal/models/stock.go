package models

import (
	"time"

	"gorm.io/gorm"
)

// Stock 库存规格表（尺码/颜色/款式维度，含价格与物理属性）
type Stock struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                           // 主键
	ProductID       uint           `gorm:"not null;index;uniqueIndex:idx_stock_variant" json:"product_id"` // 商品ID
	Size            string         `gorm:"type:varchar(20);uniqueIndex:idx_stock_variant" json:"size"`     // 尺码
	Color           string         `gorm:"type:varchar(40);uniqueIndex:idx_stock_variant" json:"color"`    // 颜色
	Variant         string         `gorm:"type:varchar(60);uniqueIndex:idx_stock_variant" json:"variant"`  // 款式
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`      // 单价
	DiscountPercent int            `gorm:"not null;default:0" json:"discount_percent"`                     // 折扣百分比（0-100）
	Quantity        int            `gorm:"not null;default:0" json:"quantity"`                             // 可售数量
	WeightGram      int            `gorm:"not null;default:0" json:"weight_gram"`                          // 单件重量（克）
	LengthCM        int            `gorm:"not null;default:0" json:"length_cm"`                            // 长（厘米）
	WidthCM         int            `gorm:"not null;default:0" json:"width_cm"`                             // 宽（厘米）
	HeightCM        int            `gorm:"not null;default:0" json:"height_cm"`                            // 高（厘米）
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`                            // 是否可售
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (Stock) TableName() string {
	return "stocks"
}

// SalePrice 折后单价
func (s Stock) SalePrice() Money {
	if s.DiscountPercent <= 0 {
		return s.PriceAmount
	}
	factor := NewMoneyFromInt(int64(100 - s.DiscountPercent)).Div(NewMoneyFromInt(100).Decimal)
	return NewMoneyFromDecimal(s.PriceAmount.Mul(factor))
}

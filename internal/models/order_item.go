package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表；下单时按值快照商品/库存属性，之后不再变更
type OrderItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID         uint           `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID       uint           `gorm:"index;not null" json:"product_id"`                         // 商品ID（溯源用，商品可能已删除）
	StockID         uint           `gorm:"index;not null" json:"stock_id"`                           // 库存规格ID（溯源用）
	ProductName     string         `gorm:"not null" json:"product_name"`                             // 商品名称快照
	Size            string         `gorm:"type:varchar(20)" json:"size"`                             // 尺码快照
	Color           string         `gorm:"type:varchar(40)" json:"color"`                            // 颜色快照
	Variant         string         `gorm:"type:varchar(60)" json:"variant"`                          // 款式快照
	UnitPrice       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价快照
	DiscountPercent int            `gorm:"not null;default:0" json:"discount_percent"`               // 折扣百分比快照
	Quantity        int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 行小计
	WeightGram      int            `gorm:"not null;default:0" json:"weight_gram"`                    // 单件重量快照（克）
	LengthCM        int            `gorm:"not null;default:0" json:"length_cm"`                      // 长（厘米）
	WidthCM         int            `gorm:"not null;default:0" json:"width_cm"`                       // 宽（厘米）
	HeightCM        int            `gorm:"not null;default:0" json:"height_cm"`                      // 高（厘米）
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

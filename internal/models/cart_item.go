package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车项
type CartItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                     // 主键
	UserID     uint           `gorm:"not null;uniqueIndex:idx_cart_user_stock" json:"user_id"`  // 用户ID
	ProductID  uint           `gorm:"not null;index" json:"product_id"`                         // 商品ID
	StockID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_stock" json:"stock_id"` // 库存规格ID
	Quantity   int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 行小计（折后单价×数量，写入时计算）
	IsSelected bool           `gorm:"not null;default:true;index" json:"is_selected"`           // 是否勾选进入结算
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
	Stock   *Stock   `gorm:"foreignKey:StockID" json:"stock,omitempty"`     // 关联库存规格
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

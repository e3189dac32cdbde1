package models

import (
	"time"

	"gorm.io/gorm"
)

// ShippingRoute 承运商可达目的地（线路编码/城市/省份）
type ShippingRoute struct {
	ID        uint           `gorm:"primarykey" json:"id"`                   // 主键
	RouteCode string         `gorm:"uniqueIndex;not null" json:"route_code"` // 承运商线路编码
	City      string         `gorm:"index;not null" json:"city"`             // 城市
	Province  string         `gorm:"index" json:"province"`                  // 省份
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                             // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间
}

// TableName 指定表名
func (ShippingRoute) TableName() string {
	return "shipping_routes"
}

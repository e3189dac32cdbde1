package models

import (
	"time"

	"gorm.io/gorm"
)

// ShippingType 承运商运输产品（如 REGPACK/ONEPACK）
type ShippingType struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	Code      string         `gorm:"uniqueIndex;not null" json:"code"` // 承运商产品编码
	Name      string         `gorm:"not null" json:"name"`             // 展示名称
	IsActive  bool           `gorm:"default:true" json:"is_active"`    // 是否可选
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                       // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (ShippingType) TableName() string {
	return "shipping_types"
}

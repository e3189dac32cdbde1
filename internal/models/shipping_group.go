package models

import (
	"time"

	"gorm.io/gorm"
)

// ShippingGroup 共享协议运价的线路分组
type ShippingGroup struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	Name      string         `gorm:"uniqueIndex;not null" json:"name"` // 分组名称
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                       // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间

	Items   []ShippingGroupItem   `gorm:"foreignKey:GroupID" json:"items,omitempty"`   // 分组内线路
	Tariffs []ShippingGroupTariff `gorm:"foreignKey:GroupID" json:"tariffs,omitempty"` // 协议运价
}

// TableName 指定表名
func (ShippingGroup) TableName() string {
	return "shipping_groups"
}

// ShippingGroupItem 线路与分组的归属关系（一条线路至多属于一个分组）
type ShippingGroupItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                 // 主键
	GroupID   uint           `gorm:"index;not null" json:"group_id"`       // 分组ID
	RouteID   uint           `gorm:"uniqueIndex;not null" json:"route_id"` // 线路ID
	CreatedAt time.Time      `gorm:"index" json:"created_at"`              // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间

	Route *ShippingRoute `gorm:"foreignKey:RouteID" json:"route,omitempty"` // 关联线路
}

// TableName 指定表名
func (ShippingGroupItem) TableName() string {
	return "shipping_group_items"
}

// ShippingGroupTariff 协议运价：(分组, 运输产品) → 每公斤单价，命中时整体覆盖承运商报价
type ShippingGroupTariff struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                                 // 主键
	GroupID        uint           `gorm:"not null;uniqueIndex:idx_group_shipping_type" json:"group_id"`         // 分组ID
	ShippingTypeID uint           `gorm:"not null;uniqueIndex:idx_group_shipping_type" json:"shipping_type_id"` // 运输产品ID
	RatePerKG      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"rate_per_kg"`             // 每公斤协议价
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                              // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                           // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                       // 软删除时间

	ShippingType *ShippingType `gorm:"foreignKey:ShippingTypeID" json:"shipping_type,omitempty"` // 关联运输产品
}

// TableName 指定表名
func (ShippingGroupTariff) TableName() string {
	return "shipping_group_tariffs"
}

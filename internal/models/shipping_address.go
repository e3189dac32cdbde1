package models

import (
	"time"

	"gorm.io/gorm"
)

// ShippingAddress 收货地址（每个用户最多 5 条，默认地址唯一）
type ShippingAddress struct {
	ID            uint           `gorm:"primarykey" json:"id"`                     // 主键
	UserID        uint           `gorm:"index;not null" json:"user_id"`            // 用户ID
	ReceiverName  string         `gorm:"not null" json:"receiver_name"`            // 收件人姓名
	ReceiverPhone string         `gorm:"not null" json:"receiver_phone"`           // 收件人电话
	Address       string         `gorm:"type:text;not null" json:"address"`        // 详细地址
	RouteCode     string         `gorm:"index;not null" json:"route_code"`         // 承运商线路编码
	PostalCode    string         `gorm:"type:varchar(10)" json:"postal_code"`      // 邮编
	IsDefault     bool           `gorm:"not null;default:false" json:"is_default"` // 默认地址
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                               // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                           // 软删除时间
}

// TableName 指定表名
func (ShippingAddress) TableName() string {
	return "shipping_addresses"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderShipping 订单配送子记录（与订单 1:1）
type OrderShipping struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                       // 主键
	OrderID          uint           `gorm:"uniqueIndex;not null" json:"order_id"`                       // 订单ID
	ReceiverName     string         `gorm:"not null" json:"receiver_name"`                              // 收件人姓名快照
	ReceiverPhone    string         `gorm:"not null" json:"receiver_phone"`                             // 收件人电话快照
	Address          string         `gorm:"type:text;not null" json:"address"`                          // 收件地址快照
	RouteCode        string         `gorm:"index;not null" json:"route_code"`                           // 目的地线路编码
	ShippingTypeCode string         `gorm:"not null" json:"shipping_type_code"`                         // 运输产品编码
	ShippingTypeName string         `gorm:"not null" json:"shipping_type_name"`                         // 运输产品名称
	ShippingCost     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_cost"` // 运费（含协议价覆盖）
	BookingCode      string         `gorm:"index" json:"booking_code,omitempty"`                        // 承运商运单号（STT）
	EstimatedSLA     string         `gorm:"type:varchar(40)" json:"estimated_sla,omitempty"`            // 预计时效
	BookedAt         *time.Time     `json:"booked_at,omitempty"`                                        // 下单承运时间
	DeliveredAt      *time.Time     `json:"delivered_at,omitempty"`                                     // 妥投时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                                                 // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (OrderShipping) TableName() string {
	return "order_shippings"
}

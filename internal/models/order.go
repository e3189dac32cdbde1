package models

import (
	"time"

	"gorm.io/gorm"
)

// 订单状态
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipping  = "shipping"
	OrderStatusComplete  = "complete"
	OrderStatusCancelled = "cancelled"
	OrderStatusReturned  = "returned"
	OrderStatusRefunded  = "refunded"
)

// 支付状态（由网关回调驱动）
const (
	PaymentStatusPending       = "pending"
	PaymentStatusCapture       = "capture"
	PaymentStatusSettlement    = "settlement"
	PaymentStatusCancel        = "cancel"
	PaymentStatusExpired       = "expired"
	PaymentStatusDeny          = "deny"
	PaymentStatusRefund        = "refund"
	PaymentStatusPartialRefund = "partial_refund"
)

// Order 订单表；金额恒等式 total = subtotal - discount + shipping + tax
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	UserID         uint           `gorm:"index;not null" json:"user_id"`                                // 用户ID
	Status         string         `gorm:"index;not null" json:"status"`                                 // 订单状态
	PaymentStatus  string         `gorm:"index;not null" json:"payment_status"`                         // 支付状态
	CouponCode1    string         `gorm:"type:varchar(64)" json:"coupon_code_1,omitempty"`              // 第一张券码（留痕文本，非外键）
	CouponCode2    string         `gorm:"type:varchar(64)" json:"coupon_code_2,omitempty"`              // 第二张券码（留痕文本，非外键）
	SubtotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal_amount"` // 商品小计
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	ShippingAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"` // 运费
	TaxAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`      // 税费
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 应付合计
	TotalWeight    int            `gorm:"not null;default:0" json:"total_weight"`                       // 总重量（克）
	ClientIP       string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                  // 下单客户端IP
	ExpiresAt      *time.Time     `gorm:"index" json:"expires_at"`                                      // 待支付过期时间
	PaidAt         *time.Time     `gorm:"index" json:"paid_at"`                                         // 支付时间
	CanceledAt     *time.Time     `gorm:"index" json:"canceled_at"`                                     // 取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	// 关联
	Items    []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`    // 订单项快照
	Shipping *OrderShipping `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"shipping,omitempty"` // 配送子记录
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// 退货/退款审批状态
const (
	ReturnStatusPending   = "pending"
	ReturnStatusConfirmed = "confirmed"
	ReturnStatusRejected  = "rejected"
)

// ReturnOrder 退货申请（与订单 1:1，只允许创建一次）
type ReturnOrder struct {
	ID          uint           `gorm:"primarykey" json:"id"`                           // 主键
	OrderID     uint           `gorm:"uniqueIndex;not null" json:"order_id"`           // 订单ID
	UserID      uint           `gorm:"index;not null" json:"user_id"`                  // 用户ID
	Reason      string         `gorm:"type:text" json:"reason"`                        // 退货原因
	ItemIDs     UintArray      `gorm:"type:json" json:"item_ids"`                      // 退回的订单项ID集合
	WantRefund  bool           `gorm:"not null;default:false" json:"want_refund"`      // 是否同时申请退款
	Status      string         `gorm:"index;not null;default:'pending'" json:"status"` // 审批状态
	ConfirmedAt *time.Time     `json:"confirmed_at,omitempty"`                         // 审批通过时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                     // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间
}

// TableName 指定表名
func (ReturnOrder) TableName() string {
	return "return_orders"
}

// RefundOrder 退款申请（与退货申请 1:1，只允许创建一次）
type RefundOrder struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                // 主键
	ReturnOrderID uint           `gorm:"uniqueIndex;not null" json:"return_order_id"`         // 退货申请ID
	UserID        uint           `gorm:"index;not null" json:"user_id"`                       // 用户ID
	Amount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 退款金额
	ReceiptNo     string         `gorm:"type:varchar(64)" json:"receipt_no"`                  // 退款凭证号
	Status        string         `gorm:"index;not null;default:'pending'" json:"status"`      // 审批状态
	ConfirmedAt   *time.Time     `json:"confirmed_at,omitempty"`                              // 审批通过时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                          // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (RefundOrder) TableName() string {
	return "refund_orders"
}

package service

import (
	"strings"
	"time"

	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/queue"
	"github.com/tokogaya/backend/internal/repository"

	"gorm.io/gorm"
)

// ReturnService 退货退款服务
type ReturnService struct {
	returnRepo  repository.ReturnRepository
	orderRepo   repository.OrderRepository
	queueClient *queue.Client
}

// NewReturnService 创建退货退款服务
func NewReturnService(returnRepo repository.ReturnRepository, orderRepo repository.OrderRepository, queueClient *queue.Client) *ReturnService {
	return &ReturnService{
		returnRepo:  returnRepo,
		orderRepo:   orderRepo,
		queueClient: queueClient,
	}
}

// CreateReturnInput 退货申请输入
type CreateReturnInput struct {
	OrderID    uint   `json:"order_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	ItemIDs    []uint `json:"item_ids"`
	WantRefund bool   `json:"want_refund"`
}

// CreateReturn 创建退货申请；仅已完成订单可退，每单至多一次
func (s *ReturnService) CreateReturn(userID uint, input CreateReturnInput) (*models.ReturnOrder, error) {
	order, err := s.orderRepo.GetByIDAndUser(input.OrderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != models.OrderStatusComplete {
		return nil, ErrOrderStatusInvalid
	}

	existing, err := s.returnRepo.GetReturnByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReturnExists
	}

	ro := &models.ReturnOrder{
		OrderID:    order.ID,
		UserID:     userID,
		Reason:     strings.TrimSpace(input.Reason),
		ItemIDs:    models.UintArray(input.ItemIDs),
		WantRefund: input.WantRefund,
		Status:     models.ReturnStatusPending,
	}
	if err := s.returnRepo.CreateReturn(ro); err != nil {
		if repository.IsDuplicateKeyError(err) {
			return nil, ErrReturnExists
		}
		return nil, err
	}
	return ro, nil
}

// GetReturnByOrder 获取用户订单的退货申请
func (s *ReturnService) GetReturnByOrder(orderID, userID uint) (*models.ReturnOrder, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	ro, err := s.returnRepo.GetReturnByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if ro == nil {
		return nil, ErrReturnNotFound
	}
	return ro, nil
}

// ListReturns 退货申请列表
func (s *ReturnService) ListReturns(filter repository.ReturnListFilter) ([]models.ReturnOrder, int64, error) {
	return s.returnRepo.ListReturns(filter)
}

// CreateRefundInput 退款申请输入
type CreateRefundInput struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CreateRefund 对已通过的退货申请发起退款；每次退货至多一次
func (s *ReturnService) CreateRefund(userID uint, input CreateRefundInput) (*models.RefundOrder, error) {
	order, err := s.orderRepo.GetByIDAndUser(input.OrderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	ro, err := s.returnRepo.GetReturnByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if ro == nil {
		return nil, ErrReturnNotFound
	}
	if ro.Status != models.ReturnStatusConfirmed {
		return nil, ErrReturnNotConfirmed
	}

	existing, err := s.returnRepo.GetRefundByReturnID(ro.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRefundExists
	}

	refund := &models.RefundOrder{
		ReturnOrderID: ro.ID,
		UserID:        userID,
		Amount:        order.TotalAmount,
		Status:        models.ReturnStatusPending,
	}
	if err := s.returnRepo.CreateRefund(refund); err != nil {
		if repository.IsDuplicateKeyError(err) {
			return nil, ErrRefundExists
		}
		return nil, err
	}
	return refund, nil
}

// ReviewReturn 管理端审批退货申请。
// 通过且同时申请退款的，订单流转到 returned。
func (s *ReturnService) ReviewReturn(returnID uint, approve bool) (*models.ReturnOrder, error) {
	ro, err := s.returnRepo.GetReturnByID(returnID)
	if err != nil {
		return nil, err
	}
	if ro == nil {
		return nil, ErrReturnNotFound
	}
	if ro.Status != models.ReturnStatusPending {
		return nil, ErrOrderStatusInvalid
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		returnRepo := s.returnRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		if approve {
			ro.Status = models.ReturnStatusConfirmed
			ro.ConfirmedAt = &now
		} else {
			ro.Status = models.ReturnStatusRejected
		}
		if err := returnRepo.UpdateReturn(ro); err != nil {
			return err
		}
		if approve && ro.WantRefund {
			if err := orderRepo.UpdateStatus(ro.OrderID, models.OrderStatusReturned, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyOrderStatus(ro.OrderID)
	return ro, nil
}

// ReviewRefund 管理端审批退款申请；通过后订单流转到 refunded
func (s *ReturnService) ReviewRefund(refundID uint, approve bool, receiptNo string) (*models.RefundOrder, error) {
	refund, err := s.returnRepo.GetRefundByID(refundID)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, ErrRefundNotFound
	}
	if refund.Status != models.ReturnStatusPending {
		return nil, ErrOrderStatusInvalid
	}

	ro, err := s.returnRepo.GetReturnByID(refund.ReturnOrderID)
	if err != nil {
		return nil, err
	}
	if ro == nil {
		return nil, ErrReturnNotFound
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		returnRepo := s.returnRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		if approve {
			refund.Status = models.ReturnStatusConfirmed
			refund.ConfirmedAt = &now
			refund.ReceiptNo = strings.TrimSpace(receiptNo)
		} else {
			refund.Status = models.ReturnStatusRejected
		}
		if err := returnRepo.UpdateRefund(refund); err != nil {
			return err
		}
		if approve {
			if err := orderRepo.UpdateStatus(ro.OrderID, models.OrderStatusRefunded, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyOrderStatus(ro.OrderID)
	return refund, nil
}

func (s *ReturnService) notifyOrderStatus(orderID uint) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		return
	}
	_ = s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: order.ID,
		Status:  order.Status,
	})
}

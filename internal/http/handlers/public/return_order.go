package public

import (
	"errors"
	"strconv"

	"github.com/tokogaya/backend/internal/http/response"
	"github.com/tokogaya/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateReturnRequest 创建退货单请求
type CreateReturnRequest struct {
	OrderID    uint   `json:"order_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	ItemIDs    []uint `json:"item_ids" binding:"required"`
	WantRefund bool   `json:"want_refund"`
}

// CreateReturn 创建退货单；每个订单最多一条
func (h *Handler) CreateReturn(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	returnOrder, err := h.ReturnService.CreateReturn(uid, service.CreateReturnInput{
		OrderID:    req.OrderID,
		Reason:     req.Reason,
		ItemIDs:    req.ItemIDs,
		WantRefund: req.WantRefund,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "order not completed", nil)
		case errors.Is(err, service.ErrReturnExists):
			respondError(c, response.CodeBadRequest, "return order already exists", nil)
		default:
			respondError(c, response.CodeInternal, "return create failed", err)
		}
		return
	}
	response.Success(c, returnOrder)
}

// GetReturnByOrder 获取订单的退货单
func (h *Handler) GetReturnByOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}
	returnOrder, err := h.ReturnService.GetReturnByOrder(uint(orderID), uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrReturnNotFound):
			respondError(c, response.CodeNotFound, "return order not found", nil)
		default:
			respondError(c, response.CodeInternal, "return fetch failed", err)
		}
		return
	}
	response.Success(c, returnOrder)
}

// CreateRefundRequest 创建退款单请求
type CreateRefundRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CreateRefund 创建退款单；需已确认的退货单，每个订单最多一条
func (h *Handler) CreateRefund(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	refund, err := h.ReturnService.CreateRefund(uid, service.CreateRefundInput{OrderID: req.OrderID})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrReturnNotFound):
			respondError(c, response.CodeBadRequest, "return order not found", nil)
		case errors.Is(err, service.ErrReturnNotConfirmed):
			respondError(c, response.CodeBadRequest, "return order not confirmed", nil)
		case errors.Is(err, service.ErrRefundExists):
			respondError(c, response.CodeBadRequest, "refund order already exists", nil)
		default:
			respondError(c, response.CodeInternal, "refund create failed", err)
		}
		return
	}
	response.Success(c, refund)
}

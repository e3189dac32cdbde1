package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tokogaya/backend/internal/http/response"
	"github.com/tokogaya/backend/internal/repository"
	"github.com/tokogaya/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListReturns 管理端退货单列表
func (h *Handler) AdminListReturns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			userID = uint(parsed)
		}
	}

	returns, total, err := h.ReturnService.ListReturns(repository.ReturnListFilter{
		UserID:   userID,
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "return fetch failed", err)
		return
	}
	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, returns, pagination)
}

// ReviewRequest 审批请求
type ReviewRequest struct {
	Approve   *bool  `json:"approve" binding:"required"`
	ReceiptNo string `json:"receipt_no"`
}

// AdminReviewReturn 审批退货申请
func (h *Handler) AdminReviewReturn(c *gin.Context) {
	returnID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || returnID == 0 {
		respondError(c, response.CodeBadRequest, "return id invalid", nil)
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	ro, err := h.ReturnService.ReviewReturn(uint(returnID), *req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReturnNotFound):
			respondError(c, response.CodeNotFound, "return order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "return order already reviewed", nil)
		default:
			respondError(c, response.CodeInternal, "return review failed", err)
		}
		return
	}
	response.Success(c, ro)
}

// AdminReviewRefund 审批退款申请；通过时可附退款凭证号
func (h *Handler) AdminReviewRefund(c *gin.Context) {
	refundID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || refundID == 0 {
		respondError(c, response.CodeBadRequest, "refund id invalid", nil)
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	refund, err := h.ReturnService.ReviewRefund(uint(refundID), *req.Approve, req.ReceiptNo)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefundNotFound):
			respondError(c, response.CodeNotFound, "refund order not found", nil)
		case errors.Is(err, service.ErrReturnNotFound):
			respondError(c, response.CodeNotFound, "return order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "refund order already reviewed", nil)
		default:
			respondError(c, response.CodeInternal, "refund review failed", err)
		}
		return
	}
	response.Success(c, refund)
}

package public

import (
	"github.com/tokogaya/backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CouponCheckRequest 优惠券试算请求
type CouponCheckRequest struct {
	CouponCodes []string `json:"coupon_codes" binding:"required"`
}

// CheckCoupon 优惠券试算：按当前勾选的购物车小计核算折扣，不产生任何状态变更
func (h *Handler) CheckCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CouponCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	snapshot, err := h.CartService.BuildSnapshot(uid)
	if err != nil {
		respondCouponCheckError(c, err)
		return
	}

	result, err := h.CouponService.Check(snapshot.Subtotal, req.CouponCodes, uid)
	if err != nil {
		respondCouponCheckError(c, err)
		return
	}
	response.Success(c, result)
}

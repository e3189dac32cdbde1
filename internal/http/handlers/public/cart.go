package public

import (
	"errors"
	"strconv"

	"github.com/tokogaya/backend/internal/http/response"
	"github.com/tokogaya/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	StockID  uint `json:"stock_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// CartSelectionRequest 勾选状态请求
type CartSelectionRequest struct {
	ItemIDs  []uint `json:"item_ids" binding:"required"`
	Selected bool   `json:"selected"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.CartService.List(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// UpsertCartItem 添加/更新购物车项
func (h *Handler) UpsertCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if req.Quantity <= 0 {
		if err := h.CartService.RemoveItem(uid, req.StockID); err != nil {
			respondError(c, response.CodeInternal, "cart update failed", err)
			return
		}
		response.Success(c, gin.H{"updated": true})
		return
	}
	item, err := h.CartService.AddItem(uid, req.StockID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemInvalid):
			respondError(c, response.CodeBadRequest, "cart item invalid", nil)
		case errors.Is(err, service.ErrStockNotFound):
			respondError(c, response.CodeBadRequest, "stock not found", nil)
		case errors.Is(err, service.ErrProductNotAvailable):
			respondError(c, response.CodeBadRequest, "product not available", nil)
		case errors.Is(err, service.ErrStockInsufficient):
			respondError(c, response.CodeBadRequest, "stock insufficient", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}
	response.Success(c, item)
}

// UpdateCartSelection 更新勾选状态
func (h *Handler) UpdateCartSelection(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CartService.UpdateSelection(uid, req.ItemIDs, req.Selected); err != nil {
		respondError(c, response.CodeInternal, "cart update failed", err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	stockID, err := strconv.ParseUint(c.Param("stock_id"), 10, 64)
	if err != nil || stockID == 0 {
		respondError(c, response.CodeBadRequest, "cart item invalid", nil)
		return
	}
	if err := h.CartService.RemoveItem(uid, uint(stockID)); err != nil {
		respondError(c, response.CodeInternal, "cart update failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(uid); err != nil {
		respondError(c, response.CodeInternal, "cart update failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

package public

import (
	"errors"
	"strconv"

	"github.com/tokogaya/backend/internal/http/response"
	"github.com/tokogaya/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// TariffCheckRequest 运费试算请求
type TariffCheckRequest struct {
	ShippingTypeCode string `json:"shipping_type_code" binding:"required"`
	RouteCode        string `json:"route_code"` // 为空时使用默认收货地址的线路
}

// CheckTariff 运费试算：按当前勾选的购物车总重量核算运费
func (h *Handler) CheckTariff(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req TariffCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	snapshot, err := h.CartService.BuildSnapshot(uid)
	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			respondError(c, response.CodeBadRequest, "cart has no selected items", nil)
			return
		}
		respondError(c, response.CodeInternal, "tariff check failed", err)
		return
	}

	var quote *service.ShippingQuote
	if req.RouteCode != "" {
		quote, err = h.ShippingService.Quote(c.Request.Context(), req.RouteCode, req.ShippingTypeCode, snapshot.TotalWeightGram)
	} else {
		quote, err = h.ShippingService.QuoteForUser(c.Request.Context(), uid, req.ShippingTypeCode, snapshot.TotalWeightGram)
	}
	if err != nil {
		respondTariffError(c, err)
		return
	}
	response.Success(c, quote)
}

// ListAddresses 获取收货地址列表
func (h *Handler) ListAddresses(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addresses, err := h.ShippingService.ListAddresses(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "address fetch failed", err)
		return
	}
	response.Success(c, gin.H{"addresses": addresses})
}

// CreateAddress 新增收货地址
func (h *Handler) CreateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var input service.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	address, err := h.ShippingService.CreateAddress(uid, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShippingRouteNotFound):
			respondError(c, response.CodeBadRequest, "shipping route not found", nil)
		case errors.Is(err, service.ErrShippingAddressLimit):
			respondError(c, response.CodeBadRequest, "shipping address limit reached", nil)
		default:
			respondError(c, response.CodeInternal, "address save failed", err)
		}
		return
	}
	response.Success(c, address)
}

// UpdateAddress 更新收货地址
func (h *Handler) UpdateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || addressID == 0 {
		respondError(c, response.CodeBadRequest, "address id invalid", nil)
		return
	}
	var input service.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	address, err := h.ShippingService.UpdateAddress(uid, uint(addressID), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShippingAddressNotFound):
			respondError(c, response.CodeNotFound, "shipping address not found", nil)
		case errors.Is(err, service.ErrShippingRouteNotFound):
			respondError(c, response.CodeBadRequest, "shipping route not found", nil)
		default:
			respondError(c, response.CodeInternal, "address save failed", err)
		}
		return
	}
	response.Success(c, address)
}

// DeleteAddress 删除收货地址
func (h *Handler) DeleteAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || addressID == 0 {
		respondError(c, response.CodeBadRequest, "address id invalid", nil)
		return
	}
	if err := h.ShippingService.DeleteAddress(uid, uint(addressID)); err != nil {
		if errors.Is(err, service.ErrShippingAddressNotFound) {
			respondError(c, response.CodeNotFound, "shipping address not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "address delete failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// SetDefaultAddress 设置默认收货地址
func (h *Handler) SetDefaultAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || addressID == 0 {
		respondError(c, response.CodeBadRequest, "address id invalid", nil)
		return
	}
	if err := h.ShippingService.SetDefaultAddress(uid, uint(addressID)); err != nil {
		if errors.Is(err, service.ErrShippingAddressNotFound) {
			respondError(c, response.CodeNotFound, "shipping address not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "address save failed", err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

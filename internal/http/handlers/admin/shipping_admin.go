package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tokogaya/backend/internal/http/response"
	"github.com/tokogaya/backend/internal/repository"
	"github.com/tokogaya/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ====================  线路管理  ====================

// RouteRequest 创建/更新线路请求
type RouteRequest struct {
	RouteCode string `json:"route_code" binding:"required"`
	City      string `json:"city" binding:"required"`
	Province  string `json:"province"`
}

// ListShippingRoutes 线路列表
func (h *Handler) ListShippingRoutes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	routes, total, err := h.ShippingAdminService.ListRoutes(repository.RouteListFilter{
		City:     strings.TrimSpace(c.Query("city")),
		Province: strings.TrimSpace(c.Query("province")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "route fetch failed", err)
		return
	}
	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, routes, pagination)
}

// CreateShippingRoute 创建线路
func (h *Handler) CreateShippingRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	route, err := h.ShippingAdminService.CreateRoute(service.RouteInput{
		RouteCode: req.RouteCode,
		City:      req.City,
		Province:  req.Province,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShippingRouteInvalid):
			respondError(c, response.CodeBadRequest, "route invalid", nil)
		case errors.Is(err, service.ErrShippingRouteExists):
			respondError(c, response.CodeBadRequest, "route code already exists", nil)
		default:
			respondError(c, response.CodeInternal, "route create failed", err)
		}
		return
	}
	response.Success(c, route)
}

// UpdateShippingRoute 更新线路
func (h *Handler) UpdateShippingRoute(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "route id invalid", nil)
		return
	}
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	route, err := h.ShippingAdminService.UpdateRoute(uint(id), service.RouteInput{
		RouteCode: req.RouteCode,
		City:      req.City,
		Province:  req.Province,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShippingRouteNotFound):
			respondError(c, response.CodeNotFound, "route not found", nil)
		case errors.Is(err, service.ErrShippingRouteInvalid):
			respondError(c, response.CodeBadRequest, "route invalid", nil)
		case errors.Is(err, service.ErrShippingRouteExists):
			respondError(c, response.CodeBadRequest, "route code already exists", nil)
		default:
			respondError(c, response.CodeInternal, "route update failed", err)
		}
		return
	}
	response.Success(c, route)
}

// DeleteShippingRoute 删除线路
func (h *Handler) DeleteShippingRoute(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "route id invalid", nil)
		return
	}
	if err := h.ShippingAdminService.DeleteRoute(uint(id)); err != nil {
		if errors.Is(err, service.ErrShippingRouteNotFound) {
			respondError(c, response.CodeNotFound, "route not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "route delete failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ====================  分组管理  ====================

// GroupRequest 创建/更新分组请求
type GroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListShippingGroups 分组列表
func (h *Handler) ListShippingGroups(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	groups, total, err := h.ShippingAdminService.ListGroups(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "group fetch failed", err)
		return
	}
	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, groups, pagination)
}

// GetShippingGroup 获取分组详情
func (h *Handler) GetShippingGroup(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "group id invalid", nil)
		return
	}
	group, err := h.ShippingAdminService.GetGroup(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrShippingGroupNotFound) {
			respondError(c, response.CodeNotFound, "group not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "group fetch failed", err)
		return
	}
	response.Success(c, group)
}

// CreateShippingGroup 创建分组
func (h *Handler) CreateShippingGroup(c *gin.Context) {
	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	group, err := h.ShippingAdminService.CreateGroup(req.Name)
	if err != nil {
		if errors.Is(err, service.ErrShippingGroupInvalid) {
			respondError(c, response.CodeBadRequest, "group invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "group create failed", err)
		return
	}
	response.Success(c, group)
}

// UpdateShippingGroup 更新分组
func (h *Handler) UpdateShippingGroup(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "group id invalid", nil)
		return
	}
	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	group, err := h.ShippingAdminService.UpdateGroup(uint(id), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShippingGroupNotFound):
			respondError(c, response.CodeNotFound, "group not found", nil)
		case errors.Is(err, service.ErrShippingGroupInvalid):
			respondError(c, response.CodeBadRequest, "group invalid", nil)
		default:
			respondError(c, response.CodeInternal, "group update failed", err)
		}
		return
	}
	response.Success(c, group)
}

// DeleteShippingGroup 删除分组
func (h *Handler) DeleteShippingGroup(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "group id invalid", nil)
		return
	}
	if err := h.ShippingAdminService.DeleteGroup(uint(id)); err != nil {
		if errors.Is(err, service.ErrShippingGroupNotFound) {
			respondError(c, response.CodeNotFound, "group not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "group delete failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GroupItemRequest 分组线路归属请求
type GroupItemRequest struct {
	RouteID uint `json:"route_id" binding:"required"`
}

// AddRouteToGroup 将线路加入分组
func (h *Handler) AddRouteToGroup(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || groupID == 0 {
		respondError(c, response.CodeBadRequest, "group id invalid", nil)
		return
	}
	var req GroupItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.ShippingAdminService.AddRouteToGroup(uint(groupID), req.RouteID); err != nil {
		switch {
		case errors.Is(err, service.ErrShippingGroupNotFound):
			respondError(c, response.CodeNotFound, "group not found", nil)
		case errors.Is(err, service.ErrShippingRouteNotFound):
			respondError(c, response.CodeNotFound, "route not found", nil)
		case errors.Is(err, service.ErrShippingRouteGrouped):
			respondError(c, response.CodeBadRequest, "route already belongs to a group", nil)
		default:
			respondError(c, response.CodeInternal, "group update failed", err)
		}
		return
	}
	response.Success(c, gin.H{"added": true})
}

// RemoveRouteFromGroup 将线路移出分组
func (h *Handler) RemoveRouteFromGroup(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || groupID == 0 {
		respondError(c, response.CodeBadRequest, "group id invalid", nil)
		return
	}
	routeID, err := strconv.ParseUint(c.Param("route_id"), 10, 64)
	if err != nil || routeID == 0 {
		respondError(c, response.CodeBadRequest, "route id invalid", nil)
		return
	}
	if err := h.ShippingAdminService.RemoveRouteFromGroup(uint(groupID), uint(routeID)); err != nil {
		respondError(c, response.CodeInternal, "group update failed", err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ====================  运输产品管理  ====================

// ShippingTypeRequest 创建/更新运输产品请求
type ShippingTypeRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

// ListShippingTypes 运输产品列表
func (h *Handler) ListShippingTypes(c *gin.Context) {
	types, err := h.ShippingAdminService.ListTypes()
	if err != nil {
		respondError(c, response.CodeInternal, "shipping type fetch failed", err)
		return
	}
	response.Success(c, types)
}

// CreateShippingType 创建运输产品
func (h *Handler) CreateShippingType(c *gin.Context) {
	var req ShippingTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	st, err := h.ShippingAdminService.CreateType(service.ShippingTypeInput{
		Code:     req.Code,
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShippingTypeInvalid):
			respondError(c, response.CodeBadRequest, "shipping type invalid", nil)
		case errors.Is(err, service.ErrShippingTypeExists):
			respondError(c, response.CodeBadRequest, "shipping type code already exists", nil)
		default:
			respondError(c, response.CodeInternal, "shipping type create failed", err)
		}
		return
	}
	response.Success(c, st)
}

// UpdateShippingType 更新运输产品
func (h *Handler) UpdateShippingType(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "shipping type id invalid", nil)
		return
	}
	var req ShippingTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	st, err := h.ShippingAdminService.UpdateType(uint(id), service.ShippingTypeInput{
		Code:     req.Code,
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShippingTypeNotFound):
			respondError(c, response.CodeNotFound, "shipping type not found", nil)
		case errors.Is(err, service.ErrShippingTypeInvalid):
			respondError(c, response.CodeBadRequest, "shipping type invalid", nil)
		case errors.Is(err, service.ErrShippingTypeExists):
			respondError(c, response.CodeBadRequest, "shipping type code already exists", nil)
		default:
			respondError(c, response.CodeInternal, "shipping type update failed", err)
		}
		return
	}
	response.Success(c, st)
}

// DeleteShippingType 删除运输产品
func (h *Handler) DeleteShippingType(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "shipping type id invalid", nil)
		return
	}
	if err := h.ShippingAdminService.DeleteType(uint(id)); err != nil {
		if errors.Is(err, service.ErrShippingTypeNotFound) {
			respondError(c, response.CodeNotFound, "shipping type not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "shipping type delete failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ====================  协议运价管理  ====================

// GroupTariffRequest 创建协议运价请求
type GroupTariffRequest struct {
	ShippingTypeID uint    `json:"shipping_type_id" binding:"required"`
	RatePerKG      float64 `json:"rate_per_kg" binding:"required"`
}

// UpdateGroupTariffRequest 更新协议运价请求
type UpdateGroupTariffRequest struct {
	RatePerKG float64 `json:"rate_per_kg" binding:"required"`
}

// ListGroupTariffs 分组协议运价列表
func (h *Handler) ListGroupTariffs(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || groupID == 0 {
		respondError(c, response.CodeBadRequest, "group id invalid", nil)
		return
	}
	tariffs, err := h.ShippingAdminService.ListGroupTariffs(uint(groupID))
	if err != nil {
		if errors.Is(err, service.ErrShippingGroupNotFound) {
			respondError(c, response.CodeNotFound, "group not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "tariff fetch failed", err)
		return
	}
	response.Success(c, tariffs)
}

// CreateGroupTariff 为分组设置协议运价
func (h *Handler) CreateGroupTariff(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || groupID == 0 {
		respondError(c, response.CodeBadRequest, "group id invalid", nil)
		return
	}
	var req GroupTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	tariff, err := h.ShippingAdminService.CreateGroupTariff(uint(groupID), service.GroupTariffInput{
		ShippingTypeID: req.ShippingTypeID,
		RatePerKG:      decimal.NewFromFloat(req.RatePerKG),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShippingGroupNotFound):
			respondError(c, response.CodeNotFound, "group not found", nil)
		case errors.Is(err, service.ErrShippingTypeNotFound):
			respondError(c, response.CodeNotFound, "shipping type not found", nil)
		case errors.Is(err, service.ErrShippingTariffInvalid):
			respondError(c, response.CodeBadRequest, "tariff invalid", nil)
		case errors.Is(err, service.ErrShippingTariffExists):
			respondError(c, response.CodeBadRequest, "tariff already exists", nil)
		default:
			respondError(c, response.CodeInternal, "tariff create failed", err)
		}
		return
	}
	response.Success(c, tariff)
}

// UpdateGroupTariff 更新协议运价
func (h *Handler) UpdateGroupTariff(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "tariff id invalid", nil)
		return
	}
	var req UpdateGroupTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	tariff, err := h.ShippingAdminService.UpdateGroupTariff(uint(id), decimal.NewFromFloat(req.RatePerKG))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShippingTariffNotFound):
			respondError(c, response.CodeNotFound, "tariff not found", nil)
		case errors.Is(err, service.ErrShippingTariffInvalid):
			respondError(c, response.CodeBadRequest, "tariff invalid", nil)
		default:
			respondError(c, response.CodeInternal, "tariff update failed", err)
		}
		return
	}
	response.Success(c, tariff)
}

// DeleteGroupTariff 删除协议运价
func (h *Handler) DeleteGroupTariff(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "tariff id invalid", nil)
		return
	}
	if err := h.ShippingAdminService.DeleteGroupTariff(uint(id)); err != nil {
		if errors.Is(err, service.ErrShippingTariffNotFound) {
			respondError(c, response.CodeNotFound, "tariff not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "tariff delete failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

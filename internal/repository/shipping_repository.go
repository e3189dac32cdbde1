package repository

import (
	"errors"
	"strings"

	"github.com/tokogaya/backend/internal/models"

	"gorm.io/gorm"
)

// ShippingRepository 线路/分组/协议运价/运输产品数据访问接口
type ShippingRepository interface {
	GetRouteByCode(routeCode string) (*models.ShippingRoute, error)
	GetRouteByID(id uint) (*models.ShippingRoute, error)
	ListRoutes(filter RouteListFilter) ([]models.ShippingRoute, int64, error)
	CreateRoute(route *models.ShippingRoute) error
	UpdateRoute(route *models.ShippingRoute) error
	DeleteRoute(id uint) error

	GetGroupByRouteCode(routeCode string) (*models.ShippingGroup, error)
	GetGroupByID(id uint) (*models.ShippingGroup, error)
	ListGroups(page, pageSize int) ([]models.ShippingGroup, int64, error)
	CreateGroup(group *models.ShippingGroup) error
	UpdateGroup(group *models.ShippingGroup) error
	DeleteGroup(id uint) error
	AddGroupItem(item *models.ShippingGroupItem) error
	RemoveGroupItem(groupID, routeID uint) error

	GetTypeByCode(code string) (*models.ShippingType, error)
	GetTypeByID(id uint) (*models.ShippingType, error)
	ListTypes(onlyActive bool) ([]models.ShippingType, error)
	CreateType(st *models.ShippingType) error
	UpdateType(st *models.ShippingType) error
	DeleteType(id uint) error

	GetGroupTariff(groupID uint, shippingTypeCode string) (*models.ShippingGroupTariff, error)
	GetGroupTariffByID(id uint) (*models.ShippingGroupTariff, error)
	ListGroupTariffs(groupID uint) ([]models.ShippingGroupTariff, error)
	CreateGroupTariff(tariff *models.ShippingGroupTariff) error
	UpdateGroupTariff(tariff *models.ShippingGroupTariff) error
	DeleteGroupTariff(id uint) error

	WithTx(tx *gorm.DB) ShippingRepository
}

// RouteListFilter 线路列表筛选
type RouteListFilter struct {
	City     string
	Province string
	Page     int
	PageSize int
}

// GormShippingRepository GORM 实现
type GormShippingRepository struct {
	db *gorm.DB
}

// NewShippingRepository 创建物流配置仓库
func NewShippingRepository(db *gorm.DB) *GormShippingRepository {
	return &GormShippingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShippingRepository) WithTx(tx *gorm.DB) ShippingRepository {
	if tx == nil {
		return r
	}
	return &GormShippingRepository{db: tx}
}

// GetRouteByCode 根据线路编码获取线路
func (r *GormShippingRepository) GetRouteByCode(routeCode string) (*models.ShippingRoute, error) {
	code := strings.TrimSpace(routeCode)
	if code == "" {
		return nil, nil
	}
	var route models.ShippingRoute
	if err := r.db.Where("route_code = ?", code).First(&route).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

// GetRouteByID 根据 ID 获取线路
func (r *GormShippingRepository) GetRouteByID(id uint) (*models.ShippingRoute, error) {
	var route models.ShippingRoute
	if err := r.db.First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

// ListRoutes 线路列表
func (r *GormShippingRepository) ListRoutes(filter RouteListFilter) ([]models.ShippingRoute, int64, error) {
	query := r.db.Model(&models.ShippingRoute{})
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Province != "" {
		query = query.Where("province = ?", filter.Province)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var routes []models.ShippingRoute
	if err := query.Order("id asc").Find(&routes).Error; err != nil {
		return nil, 0, err
	}
	return routes, total, nil
}

// CreateRoute 创建线路
func (r *GormShippingRepository) CreateRoute(route *models.ShippingRoute) error {
	return r.db.Create(route).Error
}

// UpdateRoute 更新线路
func (r *GormShippingRepository) UpdateRoute(route *models.ShippingRoute) error {
	return r.db.Save(route).Error
}

// DeleteRoute 删除线路
func (r *GormShippingRepository) DeleteRoute(id uint) error {
	return r.db.Delete(&models.ShippingRoute{}, id).Error
}

// GetGroupByRouteCode 根据目的地线路编码查询其所属分组
func (r *GormShippingRepository) GetGroupByRouteCode(routeCode string) (*models.ShippingGroup, error) {
	route, err := r.GetRouteByCode(routeCode)
	if err != nil || route == nil {
		return nil, err
	}
	var item models.ShippingGroupItem
	if err := r.db.Where("route_id = ?", route.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var group models.ShippingGroup
	if err := r.db.First(&group, item.GroupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// GetGroupByID 根据 ID 获取分组
func (r *GormShippingRepository) GetGroupByID(id uint) (*models.ShippingGroup, error) {
	var group models.ShippingGroup
	if err := r.db.Preload("Items.Route").Preload("Tariffs.ShippingType").
		First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// ListGroups 分组列表
func (r *GormShippingRepository) ListGroups(page, pageSize int) ([]models.ShippingGroup, int64, error) {
	var total int64
	if err := r.db.Model(&models.ShippingGroup{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyPagination(r.db.Model(&models.ShippingGroup{}), page, pageSize)

	var groups []models.ShippingGroup
	if err := query.Preload("Items.Route").Preload("Tariffs.ShippingType").
		Order("id asc").Find(&groups).Error; err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// CreateGroup 创建分组
func (r *GormShippingRepository) CreateGroup(group *models.ShippingGroup) error {
	return r.db.Create(group).Error
}

// UpdateGroup 更新分组
func (r *GormShippingRepository) UpdateGroup(group *models.ShippingGroup) error {
	return r.db.Save(group).Error
}

// DeleteGroup 删除分组及其归属关系与协议运价
func (r *GormShippingRepository) DeleteGroup(id uint) error {
	if err := r.db.Where("group_id = ?", id).Delete(&models.ShippingGroupItem{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("group_id = ?", id).Delete(&models.ShippingGroupTariff{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.ShippingGroup{}, id).Error
}

// AddGroupItem 将线路加入分组
func (r *GormShippingRepository) AddGroupItem(item *models.ShippingGroupItem) error {
	return r.db.Create(item).Error
}

// RemoveGroupItem 将线路移出分组
func (r *GormShippingRepository) RemoveGroupItem(groupID, routeID uint) error {
	return r.db.Where("group_id = ? AND route_id = ?", groupID, routeID).
		Delete(&models.ShippingGroupItem{}).Error
}

// GetTypeByCode 根据产品编码获取运输产品
func (r *GormShippingRepository) GetTypeByCode(code string) (*models.ShippingType, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, nil
	}
	var st models.ShippingType
	if err := r.db.Where("code = ?", trimmed).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// GetTypeByID 根据 ID 获取运输产品
func (r *GormShippingRepository) GetTypeByID(id uint) (*models.ShippingType, error) {
	var st models.ShippingType
	if err := r.db.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// ListTypes 运输产品列表
func (r *GormShippingRepository) ListTypes(onlyActive bool) ([]models.ShippingType, error) {
	query := r.db.Model(&models.ShippingType{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var types []models.ShippingType
	if err := query.Order("id asc").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// CreateType 创建运输产品
func (r *GormShippingRepository) CreateType(st *models.ShippingType) error {
	return r.db.Create(st).Error
}

// UpdateType 更新运输产品
func (r *GormShippingRepository) UpdateType(st *models.ShippingType) error {
	return r.db.Save(st).Error
}

// DeleteType 删除运输产品
func (r *GormShippingRepository) DeleteType(id uint) error {
	return r.db.Delete(&models.ShippingType{}, id).Error
}

// GetGroupTariff 获取 (分组, 运输产品编码) 的协议运价
func (r *GormShippingRepository) GetGroupTariff(groupID uint, shippingTypeCode string) (*models.ShippingGroupTariff, error) {
	if groupID == 0 {
		return nil, nil
	}
	st, err := r.GetTypeByCode(shippingTypeCode)
	if err != nil || st == nil {
		return nil, err
	}
	var tariff models.ShippingGroupTariff
	if err := r.db.Where("group_id = ? AND shipping_type_id = ?", groupID, st.ID).
		First(&tariff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tariff, nil
}

// GetGroupTariffByID 根据 ID 获取协议运价
func (r *GormShippingRepository) GetGroupTariffByID(id uint) (*models.ShippingGroupTariff, error) {
	var tariff models.ShippingGroupTariff
	if err := r.db.First(&tariff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tariff, nil
}

// ListGroupTariffs 分组协议运价列表
func (r *GormShippingRepository) ListGroupTariffs(groupID uint) ([]models.ShippingGroupTariff, error) {
	var tariffs []models.ShippingGroupTariff
	if err := r.db.Preload("ShippingType").
		Where("group_id = ?", groupID).
		Order("id asc").Find(&tariffs).Error; err != nil {
		return nil, err
	}
	return tariffs, nil
}

// CreateGroupTariff 创建协议运价
func (r *GormShippingRepository) CreateGroupTariff(tariff *models.ShippingGroupTariff) error {
	return r.db.Create(tariff).Error
}

// UpdateGroupTariff 更新协议运价
func (r *GormShippingRepository) UpdateGroupTariff(tariff *models.ShippingGroupTariff) error {
	return r.db.Save(tariff).Error
}

// DeleteGroupTariff 删除协议运价
func (r *GormShippingRepository) DeleteGroupTariff(id uint) error {
	return r.db.Delete(&models.ShippingGroupTariff{}, id).Error
}

package service

import (
	"strings"

	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/shopspring/decimal"
)

// ShippingAdminService 物流配置管理服务：线路、分组、运输产品与协议运价
type ShippingAdminService struct {
	repo repository.ShippingRepository
}

// NewShippingAdminService 创建物流配置管理服务
func NewShippingAdminService(repo repository.ShippingRepository) *ShippingAdminService {
	return &ShippingAdminService{repo: repo}
}

// ====================  线路  ====================

// RouteInput 创建/更新线路输入
type RouteInput struct {
	RouteCode string
	City      string
	Province  string
}

// ListRoutes 线路列表
func (s *ShippingAdminService) ListRoutes(filter repository.RouteListFilter) ([]models.ShippingRoute, int64, error) {
	return s.repo.ListRoutes(filter)
}

// CreateRoute 创建线路
func (s *ShippingAdminService) CreateRoute(input RouteInput) (*models.ShippingRoute, error) {
	routeCode := strings.TrimSpace(input.RouteCode)
	city := strings.TrimSpace(input.City)
	if routeCode == "" || city == "" {
		return nil, ErrShippingRouteInvalid
	}
	existing, err := s.repo.GetRouteByCode(routeCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrShippingRouteExists
	}
	route := models.ShippingRoute{
		RouteCode: routeCode,
		City:      city,
		Province:  strings.TrimSpace(input.Province),
	}
	if err := s.repo.CreateRoute(&route); err != nil {
		return nil, err
	}
	return &route, nil
}

// UpdateRoute 更新线路
func (s *ShippingAdminService) UpdateRoute(id uint, input RouteInput) (*models.ShippingRoute, error) {
	route, err := s.repo.GetRouteByID(id)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrShippingRouteNotFound
	}
	routeCode := strings.TrimSpace(input.RouteCode)
	city := strings.TrimSpace(input.City)
	if routeCode == "" || city == "" {
		return nil, ErrShippingRouteInvalid
	}
	if routeCode != route.RouteCode {
		existing, err := s.repo.GetRouteByCode(routeCode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrShippingRouteExists
		}
	}
	route.RouteCode = routeCode
	route.City = city
	route.Province = strings.TrimSpace(input.Province)
	if err := s.repo.UpdateRoute(route); err != nil {
		return nil, err
	}
	return route, nil
}

// DeleteRoute 删除线路
func (s *ShippingAdminService) DeleteRoute(id uint) error {
	route, err := s.repo.GetRouteByID(id)
	if err != nil {
		return err
	}
	if route == nil {
		return ErrShippingRouteNotFound
	}
	return s.repo.DeleteRoute(id)
}

// ====================  分组  ====================

// ListGroups 分组列表
func (s *ShippingAdminService) ListGroups(page, pageSize int) ([]models.ShippingGroup, int64, error) {
	return s.repo.ListGroups(page, pageSize)
}

// GetGroup 获取分组详情
func (s *ShippingAdminService) GetGroup(id uint) (*models.ShippingGroup, error) {
	group, err := s.repo.GetGroupByID(id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrShippingGroupNotFound
	}
	return group, nil
}

// CreateGroup 创建分组
func (s *ShippingAdminService) CreateGroup(name string) (*models.ShippingGroup, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrShippingGroupInvalid
	}
	group := models.ShippingGroup{Name: trimmed}
	if err := s.repo.CreateGroup(&group); err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup 更新分组名称
func (s *ShippingAdminService) UpdateGroup(id uint, name string) (*models.ShippingGroup, error) {
	group, err := s.repo.GetGroupByID(id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrShippingGroupNotFound
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrShippingGroupInvalid
	}
	group.Name = trimmed
	if err := s.repo.UpdateGroup(group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup 删除分组及其归属关系与协议运价
func (s *ShippingAdminService) DeleteGroup(id uint) error {
	group, err := s.repo.GetGroupByID(id)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrShippingGroupNotFound
	}
	return s.repo.DeleteGroup(id)
}

// AddRouteToGroup 将线路加入分组；一条线路至多属于一个分组
func (s *ShippingAdminService) AddRouteToGroup(groupID, routeID uint) error {
	group, err := s.repo.GetGroupByID(groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrShippingGroupNotFound
	}
	route, err := s.repo.GetRouteByID(routeID)
	if err != nil {
		return err
	}
	if route == nil {
		return ErrShippingRouteNotFound
	}
	existing, err := s.repo.GetGroupByRouteCode(route.RouteCode)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrShippingRouteGrouped
	}
	return s.repo.AddGroupItem(&models.ShippingGroupItem{GroupID: groupID, RouteID: routeID})
}

// RemoveRouteFromGroup 将线路移出分组
func (s *ShippingAdminService) RemoveRouteFromGroup(groupID, routeID uint) error {
	return s.repo.RemoveGroupItem(groupID, routeID)
}

// ====================  运输产品  ====================

// ShippingTypeInput 创建/更新运输产品输入
type ShippingTypeInput struct {
	Code     string
	Name     string
	IsActive *bool
}

// ListTypes 运输产品列表
func (s *ShippingAdminService) ListTypes() ([]models.ShippingType, error) {
	return s.repo.ListTypes(false)
}

// CreateType 创建运输产品
func (s *ShippingAdminService) CreateType(input ShippingTypeInput) (*models.ShippingType, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, ErrShippingTypeInvalid
	}
	existing, err := s.repo.GetTypeByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrShippingTypeExists
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	st := models.ShippingType{Code: code, Name: name, IsActive: isActive}
	if err := s.repo.CreateType(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateType 更新运输产品
func (s *ShippingAdminService) UpdateType(id uint, input ShippingTypeInput) (*models.ShippingType, error) {
	st, err := s.repo.GetTypeByID(id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrShippingTypeNotFound
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, ErrShippingTypeInvalid
	}
	if code != st.Code {
		existing, err := s.repo.GetTypeByCode(code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrShippingTypeExists
		}
	}
	st.Code = code
	st.Name = name
	if input.IsActive != nil {
		st.IsActive = *input.IsActive
	}
	if err := s.repo.UpdateType(st); err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteType 删除运输产品
func (s *ShippingAdminService) DeleteType(id uint) error {
	st, err := s.repo.GetTypeByID(id)
	if err != nil {
		return err
	}
	if st == nil {
		return ErrShippingTypeNotFound
	}
	return s.repo.DeleteType(id)
}

// ====================  协议运价  ====================

// GroupTariffInput 创建/更新协议运价输入
type GroupTariffInput struct {
	ShippingTypeID uint
	RatePerKG      decimal.Decimal
}

// ListGroupTariffs 分组协议运价列表
func (s *ShippingAdminService) ListGroupTariffs(groupID uint) ([]models.ShippingGroupTariff, error) {
	group, err := s.repo.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrShippingGroupNotFound
	}
	return s.repo.ListGroupTariffs(groupID)
}

// CreateGroupTariff 为分组设置某运输产品的每公斤协议价
func (s *ShippingAdminService) CreateGroupTariff(groupID uint, input GroupTariffInput) (*models.ShippingGroupTariff, error) {
	group, err := s.repo.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrShippingGroupNotFound
	}
	st, err := s.repo.GetTypeByID(input.ShippingTypeID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrShippingTypeNotFound
	}
	if input.RatePerKG.LessThanOrEqual(decimal.Zero) {
		return nil, ErrShippingTariffInvalid
	}
	existing, err := s.repo.GetGroupTariff(groupID, st.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrShippingTariffExists
	}
	tariff := models.ShippingGroupTariff{
		GroupID:        groupID,
		ShippingTypeID: st.ID,
		RatePerKG:      models.NewMoneyFromDecimal(input.RatePerKG.Round(2)),
	}
	if err := s.repo.CreateGroupTariff(&tariff); err != nil {
		return nil, err
	}
	return &tariff, nil
}

// UpdateGroupTariff 更新协议运价
func (s *ShippingAdminService) UpdateGroupTariff(id uint, ratePerKG decimal.Decimal) (*models.ShippingGroupTariff, error) {
	tariff, err := s.repo.GetGroupTariffByID(id)
	if err != nil {
		return nil, err
	}
	if tariff == nil {
		return nil, ErrShippingTariffNotFound
	}
	if ratePerKG.LessThanOrEqual(decimal.Zero) {
		return nil, ErrShippingTariffInvalid
	}
	tariff.RatePerKG = models.NewMoneyFromDecimal(ratePerKG.Round(2))
	if err := s.repo.UpdateGroupTariff(tariff); err != nil {
		return nil, err
	}
	return tariff, nil
}

// DeleteGroupTariff 删除协议运价
func (s *ShippingAdminService) DeleteGroupTariff(id uint) error {
	tariff, err := s.repo.GetGroupTariffByID(id)
	if err != nil {
		return err
	}
	if tariff == nil {
		return ErrShippingTariffNotFound
	}
	return s.repo.DeleteGroupTariff(id)
}

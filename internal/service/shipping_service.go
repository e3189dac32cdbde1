package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tokogaya/backend/internal/carrier/lionparcel"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/shopspring/decimal"
)

// 每个用户的收货地址上限
const shippingAddressLimit = 5

// TariffProvider 承运商运价查询接口
type TariffProvider interface {
	GetTariff(ctx context.Context, req lionparcel.TariffRequest) (*lionparcel.TariffResult, error)
}

// ShippingService 运费与收货地址服务
type ShippingService struct {
	shippingRepo repository.ShippingRepository
	addressRepo  repository.AddressRepository
	carrier      TariffProvider
}

// NewShippingService 创建运费服务
func NewShippingService(shippingRepo repository.ShippingRepository, addressRepo repository.AddressRepository, carrier TariffProvider) *ShippingService {
	return &ShippingService{
		shippingRepo: shippingRepo,
		addressRepo:  addressRepo,
		carrier:      carrier,
	}
}

// WeightToKG 克转公斤，向上取整，最低 1 公斤计费
func WeightToKG(grams int) int {
	if grams <= 0 {
		return 1
	}
	kg := grams / 1000
	if grams%1000 != 0 {
		kg++
	}
	return kg
}

// ShippingQuote 运费报价
type ShippingQuote struct {
	RouteCode    string       `json:"route_code"`
	ShippingType string       `json:"shipping_type"`
	WeightKG     int          `json:"weight_kg"`
	Amount       models.Money `json:"amount"`
	EstimatedSLA string       `json:"estimated_sla"`
	Negotiated   bool         `json:"negotiated"` // 是否命中协议运价
}

// Quote 核算运费：先取承运商实时报价，线路命中协议运价分组时按每公斤协议价整体覆盖。
// 协议价只覆盖金额，时效仍以承运商报价为准。
func (s *ShippingService) Quote(ctx context.Context, routeCode, shippingTypeCode string, weightGram int) (*ShippingQuote, error) {
	typeCode := strings.ToUpper(strings.TrimSpace(shippingTypeCode))
	shippingType, err := s.shippingRepo.GetTypeByCode(typeCode)
	if err != nil {
		return nil, err
	}
	if shippingType == nil || !shippingType.IsActive {
		return nil, ErrShippingTypeNotFound
	}

	route, err := s.shippingRepo.GetRouteByCode(routeCode)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrShippingRouteNotFound
	}

	weightKG := WeightToKG(weightGram)

	if s.carrier == nil {
		return nil, ErrShippingProviderUnavailable
	}
	result, err := s.carrier.GetTariff(ctx, lionparcel.TariffRequest{
		Destination: route.RouteCode,
		WeightKG:    weightKG,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShippingProviderUnavailable, err)
	}

	var entry *lionparcel.TariffEntry
	for i := range result.Entries {
		if strings.EqualFold(result.Entries[i].ProductCode, typeCode) {
			entry = &result.Entries[i]
			break
		}
	}
	if entry == nil || entry.IsEmbargo {
		return nil, ErrShippingTypeNotFound
	}

	quote := &ShippingQuote{
		RouteCode:    route.RouteCode,
		ShippingType: shippingType.Code,
		WeightKG:     weightKG,
		Amount:       models.NewMoneyFromInt(entry.TotalTariff),
		EstimatedSLA: entry.EstimatedSLA,
	}

	group, err := s.shippingRepo.GetGroupByRouteCode(route.RouteCode)
	if err != nil {
		return nil, err
	}
	if group != nil {
		tariff, err := s.shippingRepo.GetGroupTariff(group.ID, shippingType.Code)
		if err != nil {
			return nil, err
		}
		if tariff != nil {
			negotiated := tariff.RatePerKG.Mul(decimal.NewFromInt(int64(weightKG)))
			quote.Amount = models.NewMoneyFromDecimal(negotiated).Ceil()
			quote.Negotiated = true
		}
	}

	return quote, nil
}

// QuoteForUser 按用户默认收货地址核算运费
func (s *ShippingService) QuoteForUser(ctx context.Context, userID uint, shippingTypeCode string, weightGram int) (*ShippingQuote, error) {
	address, err := s.addressRepo.GetDefaultByUser(userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrShippingAddressRequired
	}
	return s.Quote(ctx, address.RouteCode, shippingTypeCode, weightGram)
}

// ListAddresses 用户地址列表
func (s *ShippingService) ListAddresses(userID uint) ([]models.ShippingAddress, error) {
	return s.addressRepo.ListByUser(userID)
}

// GetDefaultAddress 用户默认地址
func (s *ShippingService) GetDefaultAddress(userID uint) (*models.ShippingAddress, error) {
	return s.addressRepo.GetDefaultByUser(userID)
}

// AddressInput 地址写入参数
type AddressInput struct {
	ReceiverName  string `json:"receiver_name" binding:"required"`
	ReceiverPhone string `json:"receiver_phone" binding:"required"`
	Address       string `json:"address" binding:"required"`
	RouteCode     string `json:"route_code" binding:"required"`
	PostalCode    string `json:"postal_code"`
	IsDefault     bool   `json:"is_default"`
}

// CreateAddress 新增收货地址；首条自动设为默认，超出上限拒绝
func (s *ShippingService) CreateAddress(userID uint, input AddressInput) (*models.ShippingAddress, error) {
	route, err := s.shippingRepo.GetRouteByCode(input.RouteCode)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrShippingRouteNotFound
	}

	count, err := s.addressRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	if count >= shippingAddressLimit {
		return nil, ErrShippingAddressLimit
	}

	address := &models.ShippingAddress{
		UserID:        userID,
		ReceiverName:  strings.TrimSpace(input.ReceiverName),
		ReceiverPhone: strings.TrimSpace(input.ReceiverPhone),
		Address:       strings.TrimSpace(input.Address),
		RouteCode:     route.RouteCode,
		PostalCode:    strings.TrimSpace(input.PostalCode),
		IsDefault:     input.IsDefault || count == 0,
	}
	if address.IsDefault {
		if err := s.addressRepo.UnsetDefaultByUser(userID); err != nil {
			return nil, err
		}
	}
	if err := s.addressRepo.Create(address); err != nil {
		return nil, err
	}
	return address, nil
}

// UpdateAddress 更新收货地址
func (s *ShippingService) UpdateAddress(userID, addressID uint, input AddressInput) (*models.ShippingAddress, error) {
	address, err := s.addressRepo.GetByIDAndUser(addressID, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrShippingAddressNotFound
	}

	route, err := s.shippingRepo.GetRouteByCode(input.RouteCode)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrShippingRouteNotFound
	}

	address.ReceiverName = strings.TrimSpace(input.ReceiverName)
	address.ReceiverPhone = strings.TrimSpace(input.ReceiverPhone)
	address.Address = strings.TrimSpace(input.Address)
	address.RouteCode = route.RouteCode
	address.PostalCode = strings.TrimSpace(input.PostalCode)

	if input.IsDefault && !address.IsDefault {
		if err := s.addressRepo.UnsetDefaultByUser(userID); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}

	if err := s.addressRepo.Update(address); err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteAddress 删除收货地址；删除默认地址后自动晋升最新一条
func (s *ShippingService) DeleteAddress(userID, addressID uint) error {
	address, err := s.addressRepo.GetByIDAndUser(addressID, userID)
	if err != nil {
		return err
	}
	if address == nil {
		return ErrShippingAddressNotFound
	}
	wasDefault := address.IsDefault

	if err := s.addressRepo.Delete(addressID, userID); err != nil {
		return err
	}

	if wasDefault {
		remaining, err := s.addressRepo.ListByUser(userID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			remaining[0].IsDefault = true
			return s.addressRepo.Update(&remaining[0])
		}
	}
	return nil
}

// SetDefaultAddress 设置默认地址
func (s *ShippingService) SetDefaultAddress(userID, addressID uint) error {
	address, err := s.addressRepo.GetByIDAndUser(addressID, userID)
	if err != nil {
		return err
	}
	if address == nil {
		return ErrShippingAddressNotFound
	}
	if err := s.addressRepo.UnsetDefaultByUser(userID); err != nil {
		return err
	}
	address.IsDefault = true
	return s.addressRepo.Update(address)
}

package service

import (
	"strings"

	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/shopspring/decimal"
)

// StockService 库存规格业务服务
type StockService struct {
	stocks   repository.StockRepository
	products repository.ProductRepository
}

// NewStockService 创建库存规格服务
func NewStockService(stocks repository.StockRepository, products repository.ProductRepository) *StockService {
	return &StockService{stocks: stocks, products: products}
}

// StockInput 创建/更新库存规格输入
type StockInput struct {
	Size            string
	Color           string
	Variant         string
	PriceAmount     decimal.Decimal
	DiscountPercent int
	Quantity        int
	WeightGram      int
	LengthCM        int
	WidthCM         int
	HeightCM        int
	IsActive        *bool
}

func validateStockInput(input StockInput) error {
	if input.PriceAmount.LessThanOrEqual(decimal.Zero) {
		return ErrStockInvalid
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return ErrStockInvalid
	}
	if input.Quantity < 0 || input.WeightGram <= 0 {
		return ErrStockInvalid
	}
	return nil
}

// ListByProduct 获取商品的库存规格列表
func (s *StockService) ListByProduct(productID uint) ([]models.Stock, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return s.stocks.ListByProduct(productID, false)
}

// Create 为商品创建库存规格
func (s *StockService) Create(productID uint, input StockInput) (*models.Stock, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	if err := validateStockInput(input); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	stock := models.Stock{
		ProductID:       productID,
		Size:            strings.TrimSpace(input.Size),
		Color:           strings.TrimSpace(input.Color),
		Variant:         strings.TrimSpace(input.Variant),
		PriceAmount:     models.NewMoneyFromDecimal(input.PriceAmount.Round(2)),
		DiscountPercent: input.DiscountPercent,
		Quantity:        input.Quantity,
		WeightGram:      input.WeightGram,
		LengthCM:        input.LengthCM,
		WidthCM:         input.WidthCM,
		HeightCM:        input.HeightCM,
		IsActive:        isActive,
	}
	if err := s.stocks.Create(&stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// Update 更新库存规格
func (s *StockService) Update(stockID uint, input StockInput) (*models.Stock, error) {
	stock, err := s.stocks.GetByID(stockID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, ErrStockNotFound
	}
	if err := validateStockInput(input); err != nil {
		return nil, err
	}

	stock.Size = strings.TrimSpace(input.Size)
	stock.Color = strings.TrimSpace(input.Color)
	stock.Variant = strings.TrimSpace(input.Variant)
	stock.PriceAmount = models.NewMoneyFromDecimal(input.PriceAmount.Round(2))
	stock.DiscountPercent = input.DiscountPercent
	stock.Quantity = input.Quantity
	stock.WeightGram = input.WeightGram
	stock.LengthCM = input.LengthCM
	stock.WidthCM = input.WidthCM
	stock.HeightCM = input.HeightCM
	if input.IsActive != nil {
		stock.IsActive = *input.IsActive
	}
	if err := s.stocks.Update(stock); err != nil {
		return nil, err
	}
	return stock, nil
}

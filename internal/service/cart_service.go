package service

import (
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService 购物车服务
type CartService struct {
	cartRepo  repository.CartRepository
	stockRepo repository.StockRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, stockRepo repository.StockRepository) *CartService {
	return &CartService{cartRepo: cartRepo, stockRepo: stockRepo}
}

// List 获取用户购物车
func (s *CartService) List(userID uint) ([]models.CartItem, error) {
	return s.cartRepo.ListByUser(userID)
}

// AddItem 添加或更新购物车项；行小计按折后单价计算并缓存
func (s *CartService) AddItem(userID, stockID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrCartItemInvalid
	}

	stock, err := s.stockRepo.GetByID(stockID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, ErrStockNotFound
	}
	if !stock.IsActive || stock.Product == nil || !stock.Product.IsActive {
		return nil, ErrProductNotAvailable
	}
	if stock.Quantity < quantity {
		return nil, ErrStockInsufficient
	}

	unitPrice := stock.SalePrice().Ceil()
	item := &models.CartItem{
		UserID:     userID,
		ProductID:  stock.ProductID,
		StockID:    stock.ID,
		Quantity:   quantity,
		TotalPrice: models.NewMoneyFromDecimal(unitPrice.Mul(decimal.NewFromInt(int64(quantity)))),
		IsSelected: true,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, stockID uint) error {
	return s.cartRepo.DeleteByUserAndStock(userID, stockID)
}

// UpdateSelection 更新勾选状态
func (s *CartService) UpdateSelection(userID uint, itemIDs []uint, selected bool) error {
	return s.cartRepo.UpdateSelection(userID, itemIDs, selected)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	return s.cartRepo.ClearByUser(userID)
}

// SnapshotLine 结算快照单行
type SnapshotLine struct {
	Item      models.CartItem
	Stock     models.Stock
	Product   models.Product
	UnitPrice models.Money // 折后单价（向上取整）
	LineTotal models.Money
}

// Snapshot 结算快照：勾选项、实时折后价、小计与总重
type Snapshot struct {
	Lines           []SnapshotLine
	Subtotal        models.Money
	TotalWeightGram int
}

// BuildSnapshot 读取勾选的购物车项并按当前库存与折扣重新计价。
// 购物车缓存的 total_price 仅用于展示，结算一律以此快照为准。
func (s *CartService) BuildSnapshot(userID uint) (*Snapshot, error) {
	items, err := s.cartRepo.ListSelectedByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	snapshot := &Snapshot{Lines: make([]SnapshotLine, 0, len(items))}
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Stock == nil || item.Product == nil {
			return nil, ErrCartItemInvalid
		}
		if !item.Product.IsActive || !item.Stock.IsActive {
			return nil, ErrProductNotAvailable
		}
		if item.Quantity <= 0 {
			return nil, ErrCartItemInvalid
		}
		if item.Stock.Quantity < item.Quantity {
			return nil, ErrStockInsufficient
		}

		unitPrice := item.Stock.SalePrice().Ceil()
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		snapshot.Lines = append(snapshot.Lines, SnapshotLine{
			Item:      item,
			Stock:     *item.Stock,
			Product:   *item.Product,
			UnitPrice: unitPrice,
			LineTotal: models.NewMoneyFromDecimal(lineTotal),
		})
		subtotal = subtotal.Add(lineTotal)
		snapshot.TotalWeightGram += item.Stock.WeightGram * item.Quantity
	}

	snapshot.Subtotal = models.NewMoneyFromDecimal(subtotal)
	return snapshot, nil
}

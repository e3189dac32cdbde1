package main

import (
	"fmt"

	"github.com/tokogaya/backend/internal/config"
	"github.com/tokogaya/backend/internal/logger"
	"github.com/tokogaya/backend/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "kemeja", Name: "Kemeja", SortOrder: 300},
		{Slug: "celana", Name: "Celana", SortOrder: 200},
		{Slug: "aksesoris", Name: "Aksesoris", SortOrder: 100},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"kemeja", "celana", "aksesoris"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	kemejaID := categoryIDs["kemeja"]
	celanaID := categoryIDs["celana"]
	aksesorisID := categoryIDs["aksesoris"]

	// 添加商品与规格库存
	type stockSeed struct {
		Size            string
		Color           string
		Variant         string
		PriceIDR        int64
		DiscountPercent int
		Quantity        int
		WeightGram      int
		LengthCM        int
		WidthCM         int
		HeightCM        int
	}

	products := []struct {
		Product models.Product
		Stocks  []stockSeed
	}{
		{
			Product: models.Product{
				CategoryID:  kemejaID,
				Slug:        "kemeja-batik-parang",
				Name:        "Kemeja Batik Parang",
				Description: "Kemeja batik motif parang, bahan katun primisima, cocok untuk acara formal maupun kasual.",
				IsActive:    true,
				SortOrder:   300,
			},
			Stocks: []stockSeed{
				{Size: "M", Color: "Coklat", PriceIDR: 185000, Quantity: 25, WeightGram: 350, LengthCM: 30, WidthCM: 25, HeightCM: 3},
				{Size: "L", Color: "Coklat", PriceIDR: 185000, Quantity: 30, WeightGram: 380, LengthCM: 30, WidthCM: 25, HeightCM: 3},
				{Size: "XL", Color: "Coklat", PriceIDR: 195000, Quantity: 15, WeightGram: 410, LengthCM: 32, WidthCM: 26, HeightCM: 3},
			},
		},
		{
			Product: models.Product{
				CategoryID:  kemejaID,
				Slug:        "kemeja-oxford-putih",
				Name:        "Kemeja Oxford Putih",
				Description: "Kemeja oxford lengan panjang, potongan slim fit, bahan tebal tidak menerawang.",
				IsActive:    true,
				SortOrder:   280,
			},
			Stocks: []stockSeed{
				{Size: "M", Color: "Putih", PriceIDR: 225000, DiscountPercent: 10, Quantity: 40, WeightGram: 320, LengthCM: 30, WidthCM: 25, HeightCM: 3},
				{Size: "L", Color: "Putih", PriceIDR: 225000, DiscountPercent: 10, Quantity: 35, WeightGram: 350, LengthCM: 30, WidthCM: 25, HeightCM: 3},
			},
		},
		{
			Product: models.Product{
				CategoryID:  celanaID,
				Slug:        "celana-chino-navy",
				Name:        "Celana Chino Navy",
				Description: "Celana chino bahan stretch, nyaman dipakai seharian, jahitan rapi.",
				IsActive:    true,
				SortOrder:   260,
			},
			Stocks: []stockSeed{
				{Size: "30", Color: "Navy", PriceIDR: 249000, Quantity: 20, WeightGram: 520, LengthCM: 35, WidthCM: 28, HeightCM: 4},
				{Size: "32", Color: "Navy", PriceIDR: 249000, Quantity: 22, WeightGram: 540, LengthCM: 35, WidthCM: 28, HeightCM: 4},
				{Size: "34", Color: "Navy", PriceIDR: 259000, Quantity: 10, WeightGram: 560, LengthCM: 36, WidthCM: 28, HeightCM: 4},
			},
		},
		{
			Product: models.Product{
				CategoryID:  celanaID,
				Slug:        "celana-jogger-hitam",
				Name:        "Celana Jogger Hitam",
				Description: "Jogger pants bahan fleece, karet pinggang dengan tali serut.",
				IsActive:    true,
				SortOrder:   240,
			},
			Stocks: []stockSeed{
				{Size: "M", Color: "Hitam", PriceIDR: 159000, DiscountPercent: 15, Quantity: 50, WeightGram: 450, LengthCM: 34, WidthCM: 27, HeightCM: 4},
				{Size: "L", Color: "Hitam", PriceIDR: 159000, DiscountPercent: 15, Quantity: 45, WeightGram: 470, LengthCM: 34, WidthCM: 27, HeightCM: 4},
			},
		},
		{
			Product: models.Product{
				CategoryID:  aksesorisID,
				Slug:        "topi-baseball-polos",
				Name:        "Topi Baseball Polos",
				Description: "Topi baseball bahan twill, tali belakang dapat disesuaikan.",
				IsActive:    true,
				SortOrder:   220,
			},
			Stocks: []stockSeed{
				{Variant: "All Size", Color: "Hitam", PriceIDR: 65000, Quantity: 80, WeightGram: 120, LengthCM: 20, WidthCM: 18, HeightCM: 10},
				{Variant: "All Size", Color: "Krem", PriceIDR: 65000, Quantity: 60, WeightGram: 120, LengthCM: 20, WidthCM: 18, HeightCM: 10},
			},
		},
		{
			Product: models.Product{
				CategoryID:  aksesorisID,
				Slug:        "ikat-pinggang-kulit",
				Name:        "Ikat Pinggang Kulit",
				Description: "Ikat pinggang kulit asli, gesper besi anti karat.",
				IsActive:    true,
				SortOrder:   200,
			},
			Stocks: []stockSeed{
				{Size: "105cm", Color: "Coklat Tua", PriceIDR: 135000, Quantity: 30, WeightGram: 280, LengthCM: 25, WidthCM: 12, HeightCM: 5},
			},
		},
	}

	for _, seed := range products {
		prod := seed.Product
		if prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category_id missing", prod.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
				continue
			}
			stdLog.Printf("Created product: %s", prod.Slug)
		} else {
			existing.CategoryID = prod.CategoryID
			existing.Name = prod.Name
			existing.Description = prod.Description
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
				continue
			}
			prod = existing
			stdLog.Printf("Updated product: %s", prod.Slug)
		}

		for _, st := range seed.Stocks {
			var existingStock models.Stock
			err := models.DB.Where("product_id = ? AND size = ? AND color = ? AND variant = ?",
				prod.ID, st.Size, st.Color, st.Variant).First(&existingStock).Error
			if err != nil {
				stock := models.Stock{
					ProductID:       prod.ID,
					Size:            st.Size,
					Color:           st.Color,
					Variant:         st.Variant,
					PriceAmount:     models.NewMoneyFromInt(st.PriceIDR),
					DiscountPercent: st.DiscountPercent,
					Quantity:        st.Quantity,
					WeightGram:      st.WeightGram,
					LengthCM:        st.LengthCM,
					WidthCM:         st.WidthCM,
					HeightCM:        st.HeightCM,
					IsActive:        true,
				}
				if err := models.DB.Create(&stock).Error; err != nil {
					stdLog.Printf("Failed to create stock for %s (%s/%s): %v", prod.Slug, st.Size, st.Color, err)
				}
				continue
			}
			existingStock.PriceAmount = models.NewMoneyFromInt(st.PriceIDR)
			existingStock.DiscountPercent = st.DiscountPercent
			existingStock.WeightGram = st.WeightGram
			existingStock.LengthCM = st.LengthCM
			existingStock.WidthCM = st.WidthCM
			existingStock.HeightCM = st.HeightCM
			existingStock.IsActive = true
			if err := models.DB.Save(&existingStock).Error; err != nil {
				stdLog.Printf("Failed to update stock for %s (%s/%s): %v", prod.Slug, st.Size, st.Color, err)
			}
		}
	}

	// 添加运输产品
	shippingTypes := []models.ShippingType{
		{Code: "REGPACK", Name: "Reguler", IsActive: true},
		{Code: "ONEPACK", Name: "One Day", IsActive: true},
		{Code: "JAGOPACK", Name: "Hemat", IsActive: true},
	}

	for _, st := range shippingTypes {
		var existing models.ShippingType
		if err := models.DB.Where("code = ?", st.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&st).Error; err != nil {
				stdLog.Printf("Failed to create shipping type %s: %v", st.Code, err)
			} else {
				stdLog.Printf("Created shipping type: %s", st.Code)
			}
		} else {
			stdLog.Printf("Shipping type already exists: %s", st.Code)
		}
	}

	// 添加承运线路
	routes := []models.ShippingRoute{
		{RouteCode: "CGK10000", City: "Jakarta Pusat", Province: "DKI Jakarta"},
		{RouteCode: "CGK11000", City: "Jakarta Barat", Province: "DKI Jakarta"},
		{RouteCode: "BDO40000", City: "Bandung", Province: "Jawa Barat"},
		{RouteCode: "SUB60000", City: "Surabaya", Province: "Jawa Timur"},
		{RouteCode: "JOG55000", City: "Yogyakarta", Province: "DI Yogyakarta"},
	}

	for _, route := range routes {
		var existing models.ShippingRoute
		if err := models.DB.Where("route_code = ?", route.RouteCode).First(&existing).Error; err != nil {
			if err := models.DB.Create(&route).Error; err != nil {
				stdLog.Printf("Failed to create shipping route %s: %v", route.RouteCode, err)
			} else {
				stdLog.Printf("Created shipping route: %s", route.RouteCode)
			}
		} else {
			stdLog.Printf("Shipping route already exists: %s", route.RouteCode)
		}
	}

	// 添加协议运价分组：爪哇合同价，按每公斤覆盖承运商报价
	groupName := "Kontrak Jawa"
	var group models.ShippingGroup
	if err := models.DB.Where("name = ?", groupName).First(&group).Error; err != nil {
		group = models.ShippingGroup{Name: groupName}
		if err := models.DB.Create(&group).Error; err != nil {
			stdLog.Printf("Failed to create shipping group %s: %v", groupName, err)
		} else {
			stdLog.Printf("Created shipping group: %s", groupName)
		}
	} else {
		stdLog.Printf("Shipping group already exists: %s", groupName)
	}

	if group.ID != 0 {
		// 分组内线路
		groupRouteCodes := []string{"BDO40000", "SUB60000", "JOG55000"}
		for _, code := range groupRouteCodes {
			var route models.ShippingRoute
			if err := models.DB.Where("route_code = ?", code).First(&route).Error; err != nil {
				stdLog.Printf("Skip group item %s: route not found", code)
				continue
			}
			var existingItem models.ShippingGroupItem
			if err := models.DB.Where("route_id = ?", route.ID).First(&existingItem).Error; err != nil {
				item := models.ShippingGroupItem{GroupID: group.ID, RouteID: route.ID}
				if err := models.DB.Create(&item).Error; err != nil {
					stdLog.Printf("Failed to create group item %s: %v", code, err)
				} else {
					stdLog.Printf("Added route %s to group %s", code, groupName)
				}
			}
		}

		// 协议运价
		groupTariffs := []struct {
			TypeCode  string
			RatePerKG int64
		}{
			{TypeCode: "REGPACK", RatePerKG: 8000},
			{TypeCode: "ONEPACK", RatePerKG: 15000},
		}
		for _, gt := range groupTariffs {
			var shippingType models.ShippingType
			if err := models.DB.Where("code = ?", gt.TypeCode).First(&shippingType).Error; err != nil {
				stdLog.Printf("Skip group tariff %s: shipping type not found", gt.TypeCode)
				continue
			}
			var existingTariff models.ShippingGroupTariff
			if err := models.DB.Where("group_id = ? AND shipping_type_id = ?", group.ID, shippingType.ID).First(&existingTariff).Error; err != nil {
				tariff := models.ShippingGroupTariff{
					GroupID:        group.ID,
					ShippingTypeID: shippingType.ID,
					RatePerKG:      models.NewMoneyFromInt(gt.RatePerKG),
				}
				if err := models.DB.Create(&tariff).Error; err != nil {
					stdLog.Printf("Failed to create group tariff %s: %v", gt.TypeCode, err)
				} else {
					stdLog.Printf("Created group tariff %s @ %d/kg", gt.TypeCode, gt.RatePerKG)
				}
			} else {
				existingTariff.RatePerKG = models.NewMoneyFromInt(gt.RatePerKG)
				if err := models.DB.Save(&existingTariff).Error; err != nil {
					stdLog.Printf("Failed to update group tariff %s: %v", gt.TypeCode, err)
				} else {
					stdLog.Printf("Updated group tariff %s @ %d/kg", gt.TypeCode, gt.RatePerKG)
				}
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 6 Products with variant stocks")
	fmt.Println("- 3 Shipping types (REGPACK/ONEPACK/JAGOPACK)")
	fmt.Println("- 5 Shipping routes")
	fmt.Println("- 1 Negotiated tariff group (Kontrak Jawa)")
}

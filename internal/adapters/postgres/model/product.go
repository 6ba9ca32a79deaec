package model

import "github.com/rafaelleal24/product-catalog/internal/core/domain"

type Product struct {
	ID       int64   `gorm:"primaryKey;autoIncrement"`
	Name     string  `gorm:"type:text;not null"`
	SKU      string  `gorm:"column:sku;type:text;not null;uniqueIndex:idx_products_sku"`
	Price    float64 `gorm:"type:double precision;not null"`
	Stock    int64   `gorm:"type:bigint;not null"`
	Category string  `gorm:"type:text;not null"`
}

func (Product) TableName() string {
	return "products"
}

func (m *Product) ToDomain() *domain.Product {
	return &domain.Product{
		ID:       domain.ID(m.ID),
		Name:     m.Name,
		SKU:      m.SKU,
		Price:    m.Price,
		Stock:    int(m.Stock),
		Category: domain.Category(m.Category),
	}
}

func ToProductModel(p *domain.Product) *Product {
	return &Product{
		ID:       int64(p.ID),
		Name:     p.Name,
		SKU:      p.SKU,
		Price:    p.Price,
		Stock:    int64(p.Stock),
		Category: string(p.Category),
	}
}

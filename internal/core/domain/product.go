package domain

import "time"

type Product struct {
	ID       ID
	Name     string
	SKU      string
	Price    float64
	Stock    int
	Category Category
}

func NewProduct(name, sku string, price float64, stock int, category Category) *Product {
	return &Product{
		Name:     name,
		SKU:      sku,
		Price:    price,
		Stock:    stock,
		Category: category,
	}
}

type ProductCreatedEvent struct {
	ProductID ID        `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (e *ProductCreatedEvent) GetName() string {
	return "product.created"
}

func (e *ProductCreatedEvent) GetEntityName() string {
	return "product"
}

func NewProductCreatedEvent(product *Product, createdAt time.Time) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		SKU:       product.SKU,
		Price:     product.Price,
		Stock:     product.Stock,
		Category:  product.Category,
		CreatedAt: createdAt,
	}
}

package port

import (
	"context"

	"github.com/rafaelleal24/product-catalog/internal/core/domain"
)

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

type ProductPort interface {
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	// CreateWithOutbox inserts the product, assigns its generated ID and stores
	// the event built by newEvent in the outbox, atomically.
	CreateWithOutbox(ctx context.Context, product *domain.Product, newEvent func(*domain.Product) domain.Event) error
	GetAll(ctx context.Context) ([]*domain.Product, error)
}

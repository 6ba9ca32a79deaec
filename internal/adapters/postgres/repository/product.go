package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/rafaelleal24/product-catalog/internal/adapters/outbox"
	"github.com/rafaelleal24/product-catalog/internal/adapters/postgres"
	"github.com/rafaelleal24/product-catalog/internal/adapters/postgres/model"
	"github.com/rafaelleal24/product-catalog/internal/core/domain"
	"github.com/rafaelleal24/product-catalog/internal/core/port"
	"github.com/rafaelleal24/product-catalog/internal/core/serviceerrors"
)

type ProductRepository struct {
	db     *gorm.DB
	outbox outbox.Repository
}

func NewProductRepository(db *gorm.DB, outboxRepository outbox.Repository) port.ProductPort {
	return &ProductRepository{db: db, outbox: outboxRepository}
}

func (r *ProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	err := postgres.Conn(ctx, r.db).
		Model(&model.Product{}).
		Where("sku = ?", sku).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, parseError(err)
	}
	return count > 0, nil
}

func (r *ProductRepository) CreateWithOutbox(ctx context.Context, product *domain.Product, newEvent func(*domain.Product) domain.Event) error {
	return postgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		row := model.ToProductModel(product)
		row.ID = 0
		if err := tx.Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return serviceerrors.ErrDuplicateSKU
			}
			return parseError(err)
		}
		product.ID = domain.ID(row.ID)

		event := newEvent(product)
		eventData, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to encode %s event: %w", event.GetName(), err)
		}

		return r.outbox.Insert(postgres.WithTx(ctx, tx), outbox.Entry{
			EventName:  event.GetName(),
			EntityName: event.GetEntityName(),
			EventData:  eventData,
		})
	})
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	var rows []model.Product
	if err := postgres.Conn(ctx, r.db).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, parseError(err)
	}

	products := make([]*domain.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products, nil
}

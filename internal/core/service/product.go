package service

import (
	"context"
	"time"

	"github.com/rafaelleal24/product-catalog/internal/core/domain"
	"github.com/rafaelleal24/product-catalog/internal/core/dto"
	"github.com/rafaelleal24/product-catalog/internal/core/logger"
	"github.com/rafaelleal24/product-catalog/internal/core/port"
	"github.com/rafaelleal24/product-catalog/internal/core/serviceerrors"
	"github.com/rafaelleal24/product-catalog/internal/core/validation"
)

type ProductService struct {
	productRepository port.ProductPort
	txManager         port.TransactionManager
	validator         *validation.Validator
	idempotency       *IdempotencyGuard[domain.Product]
	now               func() time.Time
}

// NewProductService accepts a nil idempotency guard, in which case the
// Idempotency-Key is ignored.
func NewProductService(
	productRepository port.ProductPort,
	txManager port.TransactionManager,
	validator *validation.Validator,
	idempotency *IdempotencyGuard[domain.Product],
) *ProductService {
	return &ProductService{
		productRepository: productRepository,
		txManager:         txManager,
		validator:         validator,
		idempotency:       idempotency,
		now:               time.Now,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, idempotencyKey string, request *dto.CreateProductRequest) (*domain.Product, error) {
	if err := s.validator.Struct(request); err != nil {
		logger.Debug(ctx, "product: validation failed", map[string]any{
			"sku":   request.SKU,
			"error": err.Error(),
		})
		return nil, err
	}

	if idempotencyKey == "" || s.idempotency == nil {
		return s.createProduct(ctx, request)
	}

	return s.idempotency.Do(ctx, idempotencyKey, request, func(ctx context.Context) (*domain.Product, error) {
		return s.createProduct(ctx, request)
	})
}

func (s *ProductService) createProduct(ctx context.Context, request *dto.CreateProductRequest) (*domain.Product, error) {
	product := domain.NewProduct(request.Name, request.SKU, *request.Price, *request.Stock, domain.Category(request.Category))

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		exists, err := s.productRepository.ExistsBySKU(txCtx, product.SKU)
		if err != nil {
			return err
		}
		if exists {
			return serviceerrors.ErrDuplicateSKU
		}
		return s.productRepository.CreateWithOutbox(txCtx, product, func(p *domain.Product) domain.Event {
			return domain.NewProductCreatedEvent(p, s.now())
		})
	})
	if err != nil {
		if serviceerrors.IsOfKind(err, serviceerrors.KindInvalidRequest) {
			logger.Info(ctx, "product: sku already exists", map[string]any{"sku": product.SKU})
		} else {
			logger.Error(ctx, "product: create failed", err, map[string]any{
				"name":     product.Name,
				"sku":      product.SKU,
				"category": product.Category,
			})
		}
		return nil, err
	}

	logger.Info(ctx, "Product created", map[string]any{
		"product_id": product.ID,
		"sku":        product.SKU,
	})
	return product, nil
}

// GetAll never returns a nil slice.
func (s *ProductService) GetAll(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepository.GetAll(ctx)
	if err != nil {
		logger.Error(ctx, "product: list failed", err, nil)
		return nil, err
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/rafaelleal24/product-catalog/internal/core/domain"
	"github.com/rafaelleal24/product-catalog/internal/core/dto"
	"github.com/rafaelleal24/product-catalog/internal/core/port/mock"
	"github.com/rafaelleal24/product-catalog/internal/core/serviceerrors"
	"github.com/rafaelleal24/product-catalog/internal/core/utils"
	"github.com/rafaelleal24/product-catalog/internal/core/validation"
)

type productServiceMocks struct {
	repo  *mock.MockProductPort
	tx    *mock.MockTransactionManager
	cache *mock.MockCachePort[IdempotencyRecord[domain.Product]]
}

func setupProductService(t *testing.T) (*ProductService, productServiceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mocks := productServiceMocks{
		repo:  mock.NewMockProductPort(ctrl),
		tx:    mock.NewMockTransactionManager(ctrl),
		cache: mock.NewMockCachePort[IdempotencyRecord[domain.Product]](ctrl),
	}

	v, err := validation.NewValidator(nil)
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	guard := NewIdempotencyGuard[domain.Product](mocks.cache, IdempotencyOptions{
		TTL:          time.Minute,
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  100 * time.Millisecond,
	})

	svc := NewProductService(mocks.repo, mocks.tx, v, guard)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, mocks
}

func passthroughTx(tx *mock.MockTransactionManager) {
	tx.EXPECT().
		WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func ptr[T any](v T) *T { return &v }

func fingerprintOf(t *testing.T, payload any) string {
	t.Helper()
	fingerprint, err := utils.Fingerprint(payload)
	if err != nil {
		t.Fatalf("failed to fingerprint payload: %v", err)
	}
	return fingerprint
}

func validRequest() *dto.CreateProductRequest {
	return &dto.CreateProductRequest{
		Name:     "Rice",
		SKU:      "FOOD001",
		Price:    ptr(10.5),
		Stock:    ptr(100),
		Category: "อาหาร",
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, m := setupProductService(t)
		req := validRequest()

		passthroughTx(m.tx)
		m.repo.EXPECT().ExistsBySKU(gomock.Any(), "FOOD001").Return(false, nil)
		m.repo.EXPECT().
			CreateWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *domain.Product, newEvent func(*domain.Product) domain.Event) error {
				p.ID = 1
				event, ok := newEvent(p).(*domain.ProductCreatedEvent)
				if !ok {
					t.Fatalf("expected *domain.ProductCreatedEvent, got %T", newEvent(p))
				}
				if event.ProductID != 1 || event.SKU != "FOOD001" {
					t.Fatalf("unexpected event %+v", event)
				}
				if !event.CreatedAt.Equal(svc.now()) {
					t.Fatalf("expected event time %v, got %v", svc.now(), event.CreatedAt)
				}
				return nil
			})

		product, err := svc.CreateProduct(context.Background(), "", req)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if product.ID != 1 {
			t.Fatalf("expected id 1, got %d", product.ID)
		}
		if product.Name != "Rice" || product.SKU != "FOOD001" || product.Price != 10.5 || product.Stock != 100 {
			t.Fatalf("unexpected product %+v", product)
		}
		if product.Category != "อาหาร" {
			t.Fatalf("expected category อาหาร, got %q", product.Category)
		}
	})

	t.Run("zero stock is accepted", func(t *testing.T) {
		svc, m := setupProductService(t)
		req := validRequest()
		req.Stock = ptr(0)

		passthroughTx(m.tx)
		m.repo.EXPECT().ExistsBySKU(gomock.Any(), "FOOD001").Return(false, nil)
		m.repo.EXPECT().CreateWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		product, err := svc.CreateProduct(context.Background(), "", req)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if product.Stock != 0 {
			t.Fatalf("expected stock 0, got %d", product.Stock)
		}
	})

	t.Run("validation failures never touch storage", func(t *testing.T) {
		cases := map[string]func(r *dto.CreateProductRequest){
			"short sku":        func(r *dto.CreateProductRequest) { r.SKU = "AB" },
			"zero price":       func(r *dto.CreateProductRequest) { r.Price = ptr(0.0) },
			"negative price":   func(r *dto.CreateProductRequest) { r.Price = ptr(-1.0) },
			"negative stock":   func(r *dto.CreateProductRequest) { r.Stock = ptr(-1) },
			"unknown category": func(r *dto.CreateProductRequest) { r.Category = "electronics" },
			"empty name":       func(r *dto.CreateProductRequest) { r.Name = "" },
			"missing price":    func(r *dto.CreateProductRequest) { r.Price = nil },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				svc, _ := setupProductService(t)
				req := validRequest()
				mutate(req)

				_, err := svc.CreateProduct(context.Background(), "", req)
				if !serviceerrors.IsOfKind(err, serviceerrors.KindValidation) {
					t.Fatalf("expected KindValidation, got %v", err)
				}
			})
		}
	})

	t.Run("duplicate sku", func(t *testing.T) {
		svc, m := setupProductService(t)

		passthroughTx(m.tx)
		m.repo.EXPECT().ExistsBySKU(gomock.Any(), "FOOD001").Return(true, nil)

		_, err := svc.CreateProduct(context.Background(), "", validRequest())
		if !errors.Is(err, serviceerrors.ErrDuplicateSKU) {
			t.Fatalf("expected ErrDuplicateSKU, got %v", err)
		}
		if err.Error() != "SKU already exists" {
			t.Fatalf("expected message %q, got %q", "SKU already exists", err.Error())
		}
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		svc, m := setupProductService(t)

		passthroughTx(m.tx)
		m.repo.EXPECT().ExistsBySKU(gomock.Any(), "FOOD001").Return(false, nil)
		m.repo.EXPECT().CreateWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).Return(serviceerrors.ErrDuplicateSKU)

		_, err := svc.CreateProduct(context.Background(), "", validRequest())
		if !serviceerrors.IsOfKind(err, serviceerrors.KindInvalidRequest) {
			t.Fatalf("expected KindInvalidRequest, got %v", err)
		}
	})

	t.Run("repository error", func(t *testing.T) {
		svc, m := setupProductService(t)
		insertErr := errors.New("insert failed")

		passthroughTx(m.tx)
		m.repo.EXPECT().ExistsBySKU(gomock.Any(), "FOOD001").Return(false, nil)
		m.repo.EXPECT().CreateWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).Return(insertErr)

		product, err := svc.CreateProduct(context.Background(), "", validRequest())
		if !errors.Is(err, insertErr) {
			t.Fatalf("expected insert error, got %v", err)
		}
		if product != nil {
			t.Fatal("expected nil product on error")
		}
	})

	t.Run("idempotent replay skips storage", func(t *testing.T) {
		svc, m := setupProductService(t)
		stored := &domain.Product{ID: 7, Name: "Rice", SKU: "FOOD001", Price: 10.5, Stock: 100, Category: "อาหาร"}

		m.cache.EXPECT().SetNX(gomock.Any(), "idem-1", gomock.Any(), time.Minute).Return(false, nil)
		m.cache.EXPECT().
			Get(gomock.Any(), "idem-1").
			Return(&IdempotencyRecord[domain.Product]{
				Status:      IdempotencyDone,
				Fingerprint: fingerprintOf(t, validRequest()),
				Response:    stored,
			}, nil)

		product, err := svc.CreateProduct(context.Background(), "idem-1", validRequest())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if product.ID != 7 {
			t.Fatalf("expected replayed id 7, got %d", product.ID)
		}
	})

	t.Run("idempotent first request commits", func(t *testing.T) {
		svc, m := setupProductService(t)

		m.cache.EXPECT().SetNX(gomock.Any(), "idem-1", gomock.Any(), time.Minute).Return(true, nil)
		passthroughTx(m.tx)
		m.repo.EXPECT().ExistsBySKU(gomock.Any(), "FOOD001").Return(false, nil)
		m.repo.EXPECT().
			CreateWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *domain.Product, _ func(*domain.Product) domain.Event) error {
				p.ID = 3
				return nil
			})
		m.cache.EXPECT().
			Set(gomock.Any(), "idem-1", gomock.Any(), time.Minute).
			DoAndReturn(func(_ context.Context, _ string, record *IdempotencyRecord[domain.Product], _ time.Duration) error {
				if record.Response == nil || record.Response.ID != 3 {
					t.Fatalf("expected committed product 3, got %+v", record.Response)
				}
				return nil
			})

		if _, err := svc.CreateProduct(context.Background(), "idem-1", validRequest()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("idempotent duplicate sku releases the key", func(t *testing.T) {
		svc, m := setupProductService(t)

		m.cache.EXPECT().SetNX(gomock.Any(), "idem-1", gomock.Any(), time.Minute).Return(true, nil)
		passthroughTx(m.tx)
		m.repo.EXPECT().ExistsBySKU(gomock.Any(), "FOOD001").Return(true, nil)
		m.cache.EXPECT().Del(gomock.Any(), "idem-1").Return(nil)

		_, err := svc.CreateProduct(context.Background(), "idem-1", validRequest())
		if !errors.Is(err, serviceerrors.ErrDuplicateSKU) {
			t.Fatalf("expected ErrDuplicateSKU, got %v", err)
		}
	})
}

func TestProductService_GetAll(t *testing.T) {
	t.Run("returns products", func(t *testing.T) {
		svc, m := setupProductService(t)
		m.repo.EXPECT().GetAll(gomock.Any()).Return([]*domain.Product{
			{ID: 1, SKU: "FOOD001"},
			{ID: 2, SKU: "DRNK001"},
		}, nil)

		products, err := svc.GetAll(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(products) != 2 {
			t.Fatalf("expected 2 products, got %d", len(products))
		}
	})

	t.Run("empty table yields an empty slice", func(t *testing.T) {
		svc, m := setupProductService(t)
		m.repo.EXPECT().GetAll(gomock.Any()).Return(nil, nil)

		products, err := svc.GetAll(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if products == nil {
			t.Fatal("expected non-nil slice")
		}
	})

	t.Run("repository error", func(t *testing.T) {
		svc, m := setupProductService(t)
		m.repo.EXPECT().GetAll(gomock.Any()).Return(nil, errors.New("db down"))

		if _, err := svc.GetAll(context.Background()); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

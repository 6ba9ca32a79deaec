package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rafaelleal24/product-catalog/internal/adapters/postgres"
	"github.com/rafaelleal24/product-catalog/internal/adapters/postgres/repository"
	"github.com/rafaelleal24/product-catalog/internal/core/domain"
	"github.com/rafaelleal24/product-catalog/internal/core/serviceerrors"
)

func productCreated(p *domain.Product) domain.Event {
	return domain.NewProductCreatedEvent(p, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}

func TestProductRepository_CreateWithOutbox(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and writes outbox entry", func(t *testing.T) {
		db := newTestDB(t)
		outboxRepo := repository.NewOutboxRepository(db)
		repo := repository.NewProductRepository(db, outboxRepo)

		product := domain.NewProduct("Rice", "FOOD001", 10.5, 100, "อาหาร")
		if err := repo.CreateWithOutbox(ctx, product, productCreated); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if product.ID == 0 {
			t.Fatal("expected generated id")
		}

		entries, err := outboxRepo.FetchPending(ctx, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 outbox entry, got %d", len(entries))
		}
		if entries[0].EventName != "product.created" || entries[0].EntityName != "product" {
			t.Fatalf("unexpected outbox entry %+v", entries[0])
		}

		var event domain.ProductCreatedEvent
		if err := json.Unmarshal(entries[0].EventData, &event); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		if event.ProductID != product.ID || event.SKU != "FOOD001" {
			t.Fatalf("unexpected event %+v", event)
		}
	})

	t.Run("ids are increasing", func(t *testing.T) {
		db := newTestDB(t)
		repo := repository.NewProductRepository(db, repository.NewOutboxRepository(db))

		first := domain.NewProduct("Rice", "FOOD001", 10.5, 100, "อาหาร")
		second := domain.NewProduct("Tea", "DRNK001", 25, 0, "เครื่องดื่ม")
		if err := repo.CreateWithOutbox(ctx, first, productCreated); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.CreateWithOutbox(ctx, second, productCreated); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if second.ID <= first.ID {
			t.Fatalf("expected %d > %d", second.ID, first.ID)
		}
	})

	t.Run("duplicate sku is rejected by the unique index", func(t *testing.T) {
		db := newTestDB(t)
		outboxRepo := repository.NewOutboxRepository(db)
		repo := repository.NewProductRepository(db, outboxRepo)

		if err := repo.CreateWithOutbox(ctx, domain.NewProduct("Rice", "FOOD001", 10.5, 100, "อาหาร"), productCreated); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		err := repo.CreateWithOutbox(ctx, domain.NewProduct("Other rice", "FOOD001", 12, 1, "อาหาร"), productCreated)
		if !errors.Is(err, serviceerrors.ErrDuplicateSKU) {
			t.Fatalf("expected ErrDuplicateSKU, got %v", err)
		}

		products, _ := repo.GetAll(ctx)
		if len(products) != 1 {
			t.Fatalf("expected 1 product, got %d", len(products))
		}
		entries, _ := outboxRepo.FetchPending(ctx, 10)
		if len(entries) != 1 {
			t.Fatalf("expected 1 outbox entry, got %d", len(entries))
		}
	})

	t.Run("outbox failure rolls back the product", func(t *testing.T) {
		db := newTestDB(t)
		repo := repository.NewProductRepository(db, failingOutbox{})

		err := repo.CreateWithOutbox(ctx, domain.NewProduct("Rice", "FOOD001", 10.5, 100, "อาหาร"), productCreated)
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		exists, err := repo.ExistsBySKU(ctx, "FOOD001")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if exists {
			t.Fatal("expected product insert to be rolled back")
		}
	})
}

func TestProductRepository_ExistsBySKU(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := repository.NewProductRepository(db, repository.NewOutboxRepository(db))

	exists, err := repo.ExistsBySKU(ctx, "FOOD001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if exists {
		t.Fatal("expected sku to be absent")
	}

	if err := repo.CreateWithOutbox(ctx, domain.NewProduct("Rice", "FOOD001", 10.5, 100, "อาหาร"), productCreated); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	exists, err = repo.ExistsBySKU(ctx, "FOOD001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !exists {
		t.Fatal("expected sku to exist")
	}
}

func TestProductRepository_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		db := newTestDB(t)
		repo := repository.NewProductRepository(db, repository.NewOutboxRepository(db))

		products, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if products == nil || len(products) != 0 {
			t.Fatalf("expected empty non-nil slice, got %v", products)
		}
	})

	t.Run("ordered by id with all fields", func(t *testing.T) {
		db := newTestDB(t)
		repo := repository.NewProductRepository(db, repository.NewOutboxRepository(db))

		for _, p := range []*domain.Product{
			domain.NewProduct("Rice", "FOOD001", 10.5, 100, "อาหาร"),
			domain.NewProduct("Soap", "HOME001", 39, 7, "ของใช้"),
		} {
			if err := repo.CreateWithOutbox(ctx, p, productCreated); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}

		products, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(products) != 2 {
			t.Fatalf("expected 2 products, got %d", len(products))
		}
		if products[0].SKU != "FOOD001" || products[1].SKU != "HOME001" {
			t.Fatalf("unexpected order %s, %s", products[0].SKU, products[1].SKU)
		}
		got := products[1]
		if got.Name != "Soap" || got.Price != 39 || got.Stock != 7 || got.Category != "ของใช้" {
			t.Fatalf("unexpected product %+v", got)
		}
	})
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := repository.NewProductRepository(db, repository.NewOutboxRepository(db))
	tm := postgres.NewTransactionManager(db)
	boom := errors.New("boom")

	err := tm.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := repo.CreateWithOutbox(txCtx, domain.NewProduct("Rice", "FOOD001", 10.5, 100, "อาหาร"), productCreated); err != nil {
			return err
		}
		exists, err := repo.ExistsBySKU(txCtx, "FOOD001")
		if err != nil {
			return err
		}
		if !exists {
			t.Fatal("expected product visible inside the transaction")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	products, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected rollback, got %d products", len(products))
	}
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelleal24/product-catalog/internal/adapters/outbox"
	"github.com/rafaelleal24/product-catalog/internal/adapters/postgres"
	"github.com/rafaelleal24/product-catalog/internal/adapters/postgres/model"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) outbox.Repository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Insert(ctx context.Context, entry outbox.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	row := model.OutboxEntry{
		ID:         entry.ID,
		EventName:  entry.EventName,
		EntityName: entry.EntityName,
		EventData:  string(entry.EventData),
		Attempts:   entry.Attempts,
		CreatedAt:  time.Now().UTC(),
	}
	return parseError(postgres.Conn(ctx, r.db).Create(&row).Error)
}

func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]outbox.Entry, error) {
	var rows []model.OutboxEntry
	err := postgres.Conn(ctx, r.db).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, parseError(err)
	}

	entries := make([]outbox.Entry, len(rows))
	for i, row := range rows {
		entries[i] = outbox.Entry{
			ID:         row.ID,
			EventName:  row.EventName,
			EntityName: row.EntityName,
			EventData:  []byte(row.EventData),
			Attempts:   row.Attempts,
		}
	}
	return entries, nil
}

func (r *OutboxRepository) Delete(ctx context.Context, id string) error {
	return parseError(postgres.Conn(ctx, r.db).Delete(&model.OutboxEntry{}, "id = ?", id).Error)
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id string) error {
	return parseError(postgres.Conn(ctx, r.db).
		Model(&model.OutboxEntry{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error)
}

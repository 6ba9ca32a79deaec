package outbox

import (
	"context"
	"time"

	"github.com/rafaelleal24/product-catalog/internal/adapters/config"
	"github.com/rafaelleal24/product-catalog/internal/core/logger"
	"github.com/rafaelleal24/product-catalog/internal/core/port"
)

// Recorder receives the outcome of every publish attempt.
type Recorder interface {
	EventPublished(eventName string)
	EventFailed(eventName string)
}

type nopRecorder struct{}

func (nopRecorder) EventPublished(string) {}
func (nopRecorder) EventFailed(string)    {}

type Handler struct {
	outbox   Repository
	broker   port.BrokerPort
	recorder Recorder
	interval time.Duration
	batch    int
}

func NewHandler(outbox Repository, broker port.BrokerPort, recorder Recorder, cfg config.OutboxConfig) *Handler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Handler{
		outbox:   outbox,
		broker:   broker,
		recorder: recorder,
		interval: cfg.Interval,
		batch:    cfg.BatchSize,
	}
}

// Start relays pending entries every interval until ctx is cancelled.
func (h *Handler) Start(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	logger.Info(ctx, "outbox: relay started", map[string]any{
		"interval_ms": h.interval.Milliseconds(),
		"batch":       h.batch,
	})

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "outbox: relay stopped", nil)
			return
		case <-ticker.C:
			h.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch publishes at most one batch and returns how many entries were
// published. Failed entries stay in the outbox with their attempts bumped.
func (h *Handler) ProcessBatch(ctx context.Context) int {
	entries, err := h.outbox.FetchPending(ctx, h.batch)
	if err != nil {
		logger.Error(ctx, "outbox: failed to fetch pending events", err, map[string]any{
			"batch": h.batch,
		})
		return 0
	}

	published := 0
	for _, entry := range entries {
		attrs := map[string]any{
			"event_id":    entry.ID,
			"event_name":  entry.EventName,
			"entity_name": entry.EntityName,
			"attempts":    entry.Attempts,
		}

		if err := h.broker.PublishRaw(ctx, entry.EventName, entry.EntityName, entry.EventData); err != nil {
			h.recorder.EventFailed(entry.EventName)
			logger.Error(ctx, "outbox: failed to publish event", err, attrs)
			if err := h.outbox.MarkFailed(ctx, entry.ID); err != nil {
				logger.Error(ctx, "outbox: failed to record attempt", err, attrs)
			}
			continue
		}

		published++
		h.recorder.EventPublished(entry.EventName)
		logger.Debug(ctx, "outbox: event published", attrs)

		if err := h.outbox.Delete(ctx, entry.ID); err != nil {
			logger.Error(ctx, "outbox: failed to delete event after publish", err, attrs)
		}
	}
	return published
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rafaelleal24/product-catalog/internal/core/logger"
	"github.com/rafaelleal24/product-catalog/internal/core/port"
	"github.com/rafaelleal24/product-catalog/internal/core/serviceerrors"
	"github.com/rafaelleal24/product-catalog/internal/core/utils"
)

type IdempotencyStatus string

const (
	IdempotencyPending IdempotencyStatus = "pending"
	IdempotencyDone    IdempotencyStatus = "done"
)

type IdempotencyRecord[T any] struct {
	Status      IdempotencyStatus `json:"status"`
	Fingerprint string            `json:"fingerprint"`
	Response    *T                `json:"response,omitempty"`
}

type IdempotencyOptions struct {
	TTL          time.Duration
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// IdempotencyGuard replays the stored result of a request already served
// under the same key. Records live in a CachePort so replicas share them.
type IdempotencyGuard[T any] struct {
	store port.CachePort[IdempotencyRecord[T]]
	opts  IdempotencyOptions
}

func NewIdempotencyGuard[T any](store port.CachePort[IdempotencyRecord[T]], opts IdempotencyOptions) *IdempotencyGuard[T] {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 5 * time.Second
	}
	return &IdempotencyGuard[T]{store: store, opts: opts}
}

// Do runs fn once per key. A key reused with another payload is rejected, a
// key whose first request is still running is waited on.
func (g *IdempotencyGuard[T]) Do(ctx context.Context, key string, payload any, fn func(ctx context.Context) (*T, error)) (*T, error) {
	fingerprint, err := utils.Fingerprint(payload)
	if err != nil {
		return nil, err
	}

	replay, err := g.Acquire(ctx, key, fingerprint)
	if err != nil {
		logger.Warn(ctx, "idempotency: acquire failed", map[string]any{
			"idempotency_key": key,
			"error":           err.Error(),
		})
		return nil, err
	}
	if replay != nil {
		logger.Info(ctx, "idempotency: replaying stored response", map[string]any{
			"idempotency_key": key,
		})
		return replay, nil
	}

	result, err := fn(ctx)
	if err != nil {
		g.Abandon(ctx, key)
		return nil, err
	}

	g.Commit(ctx, key, fingerprint, result)
	return result, nil
}

// Acquire returns nil, nil when the caller owns the key and must do the work.
func (g *IdempotencyGuard[T]) Acquire(ctx context.Context, key, fingerprint string) (*T, error) {
	acquired, err := g.store.SetNX(ctx, key, &IdempotencyRecord[T]{
		Status:      IdempotencyPending,
		Fingerprint: fingerprint,
	}, g.opts.TTL)
	if err != nil {
		return nil, fmt.Errorf("idempotency acquire failed: %w", err)
	}
	if acquired {
		return nil, nil
	}
	return g.await(ctx, key, fingerprint)
}

func (g *IdempotencyGuard[T]) Commit(ctx context.Context, key, fingerprint string, result *T) {
	err := g.store.Set(ctx, key, &IdempotencyRecord[T]{
		Status:      IdempotencyDone,
		Fingerprint: fingerprint,
		Response:    result,
	}, g.opts.TTL)
	if err != nil {
		logger.Error(ctx, "idempotency: commit failed", err, map[string]any{
			"idempotency_key": key,
		})
	}
}

func (g *IdempotencyGuard[T]) Abandon(ctx context.Context, key string) {
	if err := g.store.Del(ctx, key); err != nil {
		logger.Error(ctx, "idempotency: abandon failed", err, map[string]any{
			"idempotency_key": key,
		})
	}
}

// inspect reports done=true once the record settles into a response or an error.
func (g *IdempotencyGuard[T]) inspect(ctx context.Context, key, fingerprint string) (*T, bool, error) {
	record, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, true, fmt.Errorf("idempotency lookup failed: %w", err)
	}
	switch {
	case record == nil:
		return nil, true, serviceerrors.NewConflictError("previous request with this idempotency key failed, retry")
	case record.Fingerprint != fingerprint:
		return nil, true, serviceerrors.NewUnprocessableEntityError("idempotency key already used with a different payload")
	case record.Status == IdempotencyDone:
		return record.Response, true, nil
	default:
		return nil, false, nil
	}
}

func (g *IdempotencyGuard[T]) await(ctx context.Context, key, fingerprint string) (*T, error) {
	if result, done, err := g.inspect(ctx, key, fingerprint); done {
		return result, err
	}

	deadline := time.NewTimer(g.opts.PollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(g.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, serviceerrors.NewConflictError("request with this idempotency key is still being processed")
		case <-ticker.C:
			if result, done, err := g.inspect(ctx, key, fingerprint); done {
				return result, err
			}
		}
	}
}

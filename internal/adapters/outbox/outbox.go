package outbox

import "context"

// Entry is an event waiting to be relayed to the broker.
type Entry struct {
	ID         string
	EventName  string
	EntityName string
	EventData  []byte
	Attempts   int
}

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	// FetchPending returns the oldest entries first.
	FetchPending(ctx context.Context, limit int) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

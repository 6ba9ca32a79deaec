package port

import "context"

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

type BrokerPort interface {
	PublishRaw(ctx context.Context, eventName, entityName string, data []byte) error
	HealthCheck() error
	Close() error
}

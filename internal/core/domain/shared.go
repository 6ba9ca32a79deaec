package domain

type ID int64

type Event interface {
	GetName() string
	GetEntityName() string
}

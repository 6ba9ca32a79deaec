package model

import "time"

type OutboxEntry struct {
	ID         string    `gorm:"primaryKey;size:36"`
	EventName  string    `gorm:"type:text;not null"`
	EntityName string    `gorm:"type:text;not null"`
	EventData  string    `gorm:"type:text;not null"`
	Attempts   int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

func (OutboxEntry) TableName() string {
	return "outbox"
}

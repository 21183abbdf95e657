package model

import "time"

// Document is one locally persisted JSON document addressed by a fixed
// key. The queue store keeps all of its state in this table.
type Document struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeIDBase is the base for append-only rows. IDs are UUIDv7 so that
// ordering by id is ordering by creation time.
type TimeIDBase struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (b *TimeIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = NewTimeID()
	}
	return
}

// NewTimeID returns a time-ordered identifier.
func NewTimeID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func GenerateUUID() string {
	return uuid.New().String()
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SleepEntry records where a user slept on one calendar day.
// Date is YYYY-MM-DD text, never a timestamp; (UserID, Date) is unique.
type SleepEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:uidx_sleep_entries_user_date" json:"user_id"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	Date       string    `gorm:"type:varchar(10);not null;uniqueIndex:uidx_sleep_entries_user_date" json:"date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Location Location `gorm:"foreignKey:LocationID;constraint:OnDelete:RESTRICT" json:"location"`
}

// TableName overrides the table name
func (SleepEntry) TableName() string {
	return "sleep_entries"
}

// BeforeCreate hook to generate UUID before creating a new entry
func (e *SleepEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// LocationNights is one row of a per-location night count
type LocationNights struct {
	LocationID uuid.UUID `json:"location_id"`
	Nights     int64     `json:"nights"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

type Shop struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	OwnerID  string `gorm:"size:64;not null;index" json:"owner_id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Timezone string `gorm:"size:64" json:"timezone"`

	OpeningHours datatypes.JSON `json:"opening_hours"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

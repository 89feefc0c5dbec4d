package models

import (
	"time"

	"gorm.io/datatypes"
)

// Provider is anyone who can be booked. ID is the provider's user id.
type Provider struct {
	ID          string  `gorm:"primaryKey;size:64" json:"id"`
	Kind        string  `gorm:"size:20;not null" json:"kind"`
	DisplayName string  `gorm:"size:100" json:"display_name"`
	ShopID      *string `gorm:"size:64;index" json:"shop_id,omitempty"`
	Active      bool    `gorm:"default:true" json:"active"`
	Timezone    string  `gorm:"size:64" json:"timezone"`

	// Schedule is the personal weekly schedule keyed by weekday name.
	// Unused for shop owners, who follow their shop's opening hours.
	Schedule datatypes.JSON `json:"schedule"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import "time"

type Service struct {
	ID         string  `gorm:"primaryKey;size:64" json:"id"`
	ShopID     *string `gorm:"size:64;index" json:"shop_id,omitempty"`
	ProviderID *string `gorm:"size:64;index" json:"provider_id,omitempty"`

	Name            string  `gorm:"size:100;not null" json:"name"`
	Type            string  `gorm:"size:20;not null" json:"type"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Active          bool    `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

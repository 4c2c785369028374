package models

import "time"

// Product represents a single marketplace listing. Field names follow the
// wire format of the marketplace API (snake_case).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Location    string    `json:"location,omitempty"`
	SellerID    string    `json:"user_id"`
	SellerName  string    `json:"seller_name,omitempty"`
	SellerPhone string    `json:"seller_phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProduct is the payload for creating a listing.
type NewProduct struct {
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Location    string  `json:"location,omitempty"`
}

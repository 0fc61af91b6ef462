package models

import "time"

// Product is a catalogue entry shown on the storefront.
type Product struct {
	ID          string    `json:"id"`
	Image       string    `json:"image"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"createdAt"`
}

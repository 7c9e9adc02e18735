// Package model defines the data structures used throughout the application.
//
// The `validate:"..."` tags are the application-layer rules checked by the
// validation package before any write. The store enforces its own, separate
// constraints on the same collections (see repository/sqlite/schema.go).
package model

import "time"

// Defaults applied when a field is absent on create.
const (
	DefaultBreed = "Unknown"
	DefaultColor = "Unknown"
)

// Cat is the root entity: an animal profile.
type Cat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Breed     string    `json:"breed"`
	Age       float64   `json:"age" validate:"gte=0"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CatRef is the part of a Cat embedded into a Meow when it is read back.
type CatRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

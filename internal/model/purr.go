package model

import (
	"encoding/json"
	"time"
)

// Defaults applied when a field is absent on create.
const (
	DefaultIntensity       = 5
	DefaultDurationSeconds = 10
)

// Purr is a reaction attached to exactly one Meow.
type Purr struct {
	ID     string `json:"id"`
	MeowID string `json:"-" validate:"required"`

	// Set by reads; nil when the Meow no longer exists.
	Meow *Meow `json:"-" validate:"-"`

	Intensity       int       `json:"intensity" validate:"min=1,max=10"`
	DurationSeconds float64   `json:"durationSeconds" validate:"gte=1"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// MarshalJSON writes meowId as the populated Meow when it was found, and as
// the raw id string otherwise.
func (p Purr) MarshalJSON() ([]byte, error) {
	type plain Purr
	out := struct {
		MeowID any `json:"meowId"`
		plain
	}{MeowID: p.MeowID, plain: plain(p)}
	if p.Meow != nil {
		out.MeowID = p.Meow
	}
	return json.Marshal(out)
}

package model

import (
	"encoding/json"
	"time"
)

// MaxMeowText is the longest text a Meow may carry, counted in characters.
const MaxMeowText = 280

// Mood values accepted on a Meow.
const (
	MoodHappy   = "happy"
	MoodSleepy  = "sleepy"
	MoodPlayful = "playful"
	MoodHungry  = "hungry"
	MoodGrumpy  = "grumpy"
)

// Moods lists every accepted mood, in declaration order.
var Moods = []string{MoodHappy, MoodSleepy, MoodPlayful, MoodHungry, MoodGrumpy}

// Meow is a post about a Cat. CatID is a plain reference: the Cat may be
// deleted later and the Meow keeps the now-dangling id.
type Meow struct {
	ID    string `json:"id"`
	CatID string `json:"-" validate:"required"`

	// Set by reads; nil when the Cat no longer exists.
	Cat *CatRef `json:"-" validate:"-"`

	Text      string    `json:"text" validate:"required,max=280"`
	Mood      string    `json:"mood" validate:"oneof=happy sleepy playful hungry grumpy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarshalJSON writes catId as the populated {id, name} when the Cat was
// found, and as the raw id string otherwise.
func (m Meow) MarshalJSON() ([]byte, error) {
	type plain Meow
	out := struct {
		CatID any `json:"catId"`
		plain
	}{CatID: m.CatID, plain: plain(m)}
	if m.Cat != nil {
		out.CatID = m.Cat
	}
	return json.Marshal(out)
}

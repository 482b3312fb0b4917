package models

import (
	"encoding/json"
	"time"
)

// EventState is the redemption window state of an Event at a given instant.
// It is computed, never stored.
type EventState string

const (
	EventNotStarted EventState = "not_started"
	EventActive     EventState = "active"
	EventEnded      EventState = "ended"
)

// Event is a timed promotion of a Game. Redeeming it adds Rewards to the
// player's stats for that game.
type Event struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	StartDate time.Time `json:"startDate" gorm:"not null;index"`
	EndDate   time.Time `json:"endDate" gorm:"not null;index"`
	GameID    string    `json:"-" gorm:"index;not null"`
	Rewards   Stats     `json:"rewards" gorm:"type:jsonb"`

	// Populated on read, either in full or as a summary
	Game    *Game        `json:"-" gorm:"foreignKey:GameID;references:ID"`
	GameRef *GameSummary `json:"-" gorm:"foreignKey:GameID;references:ID"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// StateAt evaluates the window [StartDate, EndDate], both ends inclusive.
func (e *Event) StateAt(now time.Time) EventState {
	switch {
	case now.Before(e.StartDate):
		return EventNotStarted
	case now.After(e.EndDate):
		return EventEnded
	default:
		return EventActive
	}
}

// ListedAt reports whether the event still shows up in a game's event list:
// anything that has not ended yet, including events that haven't started.
func (e *Event) ListedAt(now time.Time) bool {
	return !now.After(e.EndDate)
}

func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(struct {
		alias
		Game any `json:"game"`
	}{
		alias: alias(e),
		Game:  refOrDoc(e.GameID, e.Game, e.GameRef),
	})
}

package models

import "gorm.io/gorm"

// Summary read models. Each maps onto an entity's table with only the
// columns shown when a reference is expanded to its summary, so a populated
// summary never carries zero values for columns it did not load.

// GameSummary is a game reference: id, name and short name.
type GameSummary struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name"`
	ShortName string         `json:"shortName"`
	DeletedAt gorm.DeletedAt `json:"-"`
}

func (GameSummary) TableName() string { return "games" }

// UserSummary is a user reference: id and full name.
type UserSummary struct {
	ID       string `json:"id" gorm:"primaryKey"`
	FullName string `json:"fullName"`
}

func (UserSummary) TableName() string { return "users" }

// EventSummary is an entry of a game's event list.
type EventSummary struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

func (EventSummary) TableName() string { return "events" }

// UserGameInfoSummary is an entry of a game's or user's player-stats list.
type UserGameInfoSummary struct {
	ID     string `json:"id" gorm:"primaryKey"`
	GameID string `json:"game"`
	UserID string `json:"user"`
}

func (UserGameInfoSummary) TableName() string { return "user_game_infos" }

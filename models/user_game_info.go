package models

import (
	"encoding/json"
	"time"
)

// UserGameInfo is a player's statistics for one game. There is at most one
// per (GameID, UserID) pair.
type UserGameInfo struct {
	ID     string `json:"id" gorm:"primaryKey"`
	GameID string `json:"-" gorm:"not null;uniqueIndex:idx_user_game_infos_pair"`
	UserID string `json:"-" gorm:"not null;uniqueIndex:idx_user_game_infos_pair;index"`
	Stats  Stats  `json:"stats" gorm:"type:jsonb"`

	// Populated on read, either in full or as a summary
	Game    *Game        `json:"-" gorm:"foreignKey:GameID;references:ID"`
	GameRef *GameSummary `json:"-" gorm:"foreignKey:GameID;references:ID"`
	User    *User        `json:"-" gorm:"foreignKey:UserID;references:ID"`
	UserRef *UserSummary `json:"-" gorm:"foreignKey:UserID;references:ID"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (i UserGameInfo) MarshalJSON() ([]byte, error) {
	type alias UserGameInfo
	return json.Marshal(struct {
		alias
		Game any `json:"game"`
		User any `json:"user"`
	}{
		alias: alias(i),
		Game:  refOrDoc(i.GameID, i.Game, i.GameRef),
		User:  refOrDoc(i.UserID, i.User, i.UserRef),
	})
}

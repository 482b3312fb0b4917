// models/game.go
package models

import "encoding/json"

type Game struct {
	ID            string `json:"id" gorm:"primaryKey"`
	Name          string `json:"name" gorm:"not null"`
	ShortName     string `json:"shortName" gorm:"index"`
	BeginnerStats Stats  `json:"beginnerStats" gorm:"type:jsonb"` // template for new players

	// 🔗 Back-references, appended on event / player-stats creation
	EventIDs    RefList `json:"-" gorm:"column:event_ids;type:jsonb"`
	UserInfoIDs RefList `json:"-" gorm:"column:user_info_ids;type:jsonb"`

	// Populated on read only
	Events    []EventSummary        `json:"-" gorm:"-"`
	UserInfos []UserGameInfoSummary `json:"-" gorm:"-"`

	Timestamps
}

func (g Game) MarshalJSON() ([]byte, error) {
	type alias Game
	return json.Marshal(struct {
		alias
		Events    any `json:"events"`
		UserInfos any `json:"userInfos"`
	}{
		alias:     alias(g),
		Events:    refsOrDocs(g.EventIDs, g.Events),
		UserInfos: refsOrDocs(g.UserInfoIDs, g.UserInfos),
	})
}

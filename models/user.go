package models

import (
	"encoding/json"
	"time"
)

// User is a player account. ExternalID is the id known to the external
// profile service; ID is ours and is what player-stats records reference.
type User struct {
	ID         string `json:"id" gorm:"primaryKey"`
	ExternalID string `json:"userId" gorm:"column:user_id;uniqueIndex;not null"`
	FullName   string `json:"fullName"`
	Password   string `json:"-"` // bcrypt hash, opaque

	GameInfoIDs RefList               `json:"-" gorm:"column:game_info_ids;type:jsonb"`
	GameInfos   []UserGameInfoSummary `json:"-" gorm:"-"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		GameInfos any `json:"gameInfos"`
	}{
		alias:     alias(u),
		GameInfos: refsOrDocs(u.GameInfoIDs, u.GameInfos),
	})
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"game-stats-system/models"
	"game-stats-system/repository"
)

// ErrExportDisabled is returned when no object store is configured.
var ErrExportDisabled = errors.New("object storage is not configured")

// ObjectStore uploads an object and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// GameStatsSnapshot is the exported document.
type GameStatsSnapshot struct {
	Game       *models.Game          `json:"game"`
	ExportedAt time.Time             `json:"exportedAt"`
	Players    []models.UserGameInfo `json:"players"`
}

// ExportService writes per-game statistics snapshots to object storage.
type ExportService struct {
	DB     *gorm.DB
	Ledger *LedgerService
	Store  ObjectStore // nil disables exports
	Clock  clockwork.Clock
	Log    *zap.Logger
}

func NewExportService(db *gorm.DB, ledger *LedgerService, store ObjectStore, clock clockwork.Clock, log *zap.Logger) *ExportService {
	return &ExportService{DB: db, Ledger: ledger, Store: store, Clock: clock, Log: log}
}

// ExportGameStats uploads a JSON snapshot of the game and all its player
// records to exports/<short name>/<unix time>.json.
func (s *ExportService) ExportGameStats(ctx context.Context, gameID string) (string, error) {
	if s.Store == nil {
		return "", ErrExportDisabled
	}

	game, err := repository.New[models.Game](s.DB).FindByID(ctx, gameID)
	if err != nil {
		return "", notFound(err, EntityGame)
	}
	players, err := s.Ledger.ListForGame(ctx, gameID)
	if err != nil {
		return "", err
	}

	now := s.Clock.Now().UTC()
	body, err := json.Marshal(GameStatsSnapshot{Game: game, ExportedAt: now, Players: players})
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	name := game.ShortName
	if name == "" {
		name = game.Name
	}
	key := fmt.Sprintf("exports/%s/%d.json", slug.Make(name), now.Unix())

	url, err := s.Store.Put(ctx, key, body, "application/json")
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	s.Log.Info("[EXPORT] game stats exported",
		zap.String("game_id", gameID),
		zap.Int("players", len(players)),
		zap.String("key", key))
	return url, nil
}

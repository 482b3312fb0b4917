package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"game-stats-system/models"
	"game-stats-system/repository"
)

// ledgerSummary expands a record's game and user to their summary models.
func ledgerSummary() []repository.Expand {
	return []repository.Expand{
		repository.Populate("GameRef"),
		repository.Populate("UserRef"),
	}
}

// LedgerService owns every player's per-game statistics record.
//
// Stats mutations lock the record row for the duration of the
// read-modify-write, so concurrent redemptions against one record are
// serialized instead of losing updates.
type LedgerService struct {
	DB        *gorm.DB
	Relations *RelationService
	Log       *zap.Logger
}

func NewLedgerService(db *gorm.DB, relations *RelationService, log *zap.Logger) *LedgerService {
	return &LedgerService{DB: db, Relations: relations, Log: log}
}

// Find returns the record for the (game, user) pair. With full set the game
// and user references are expanded to whole documents, otherwise to their
// summaries.
func (s *LedgerService) Find(ctx context.Context, gameID, userID string, full bool) (*models.UserGameInfo, error) {
	expand := ledgerSummary()
	if full {
		expand = []repository.Expand{repository.Populate("Game"), repository.Populate("User")}
	}
	info, err := repository.New[models.UserGameInfo](s.DB).FindOne(ctx,
		repository.Filter{"game_id": gameID, "user_id": userID}, expand...)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, &NotFoundError{Entity: EntityUserInfo}
	}
	return info, nil
}

// GetOrCreate returns the pair's record, creating it from the game's
// beginner stats on first contact.
func (s *LedgerService) GetOrCreate(ctx context.Context, gameID, userID string) (*models.UserGameInfo, error) {
	info, err := s.Find(ctx, gameID, userID, false)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		game, err := repository.New[models.Game](tx).FindByID(ctx, gameID)
		if err != nil {
			return notFound(err, EntityGame)
		}

		record := &models.UserGameInfo{
			ID:     uuid.NewString(),
			GameID: gameID,
			UserID: userID,
			Stats:  game.BeginnerStats.Clone(),
		}
		inserted, err := repository.New[models.UserGameInfo](tx).InsertIfAbsent(ctx, record)
		if err != nil {
			return err
		}
		if !inserted {
			// A concurrent request created the pair first; use theirs.
			return nil
		}

		s.Log.Info("[LEDGER] created player stats",
			zap.String("id", record.ID),
			zap.String("game_id", gameID),
			zap.String("user_id", userID))
		return s.Relations.LinkUserGameInfo(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	return s.Find(ctx, gameID, userID, false)
}

// ReplaceStats overwrites the given stats on record.
func (s *LedgerService) ReplaceStats(ctx context.Context, record *models.UserGameInfo, updates models.Stats) (*models.UserGameInfo, error) {
	return s.mutateStats(ctx, record.ID, func(stats models.Stats) models.Stats {
		return models.MergeReplace(stats, updates)
	})
}

// ApplyRewards adds deltas onto record's stats.
func (s *LedgerService) ApplyRewards(ctx context.Context, record *models.UserGameInfo, deltas models.Stats) (*models.UserGameInfo, error) {
	return s.mutateStats(ctx, record.ID, func(stats models.Stats) models.Stats {
		return models.MergeAdd(stats, deltas)
	})
}

func (s *LedgerService) mutateStats(ctx context.Context, id string, mutate func(models.Stats) models.Stats) (*models.UserGameInfo, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		infos := repository.New[models.UserGameInfo](tx)
		current, err := infos.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		stats := mutate(current.Stats.Clone())
		return infos.UpdateColumns(ctx, id, map[string]any{"stats": stats})
	})
	if err != nil {
		return nil, notFound(err, EntityUserInfo)
	}

	info, err := repository.New[models.UserGameInfo](s.DB).FindByID(ctx, id, ledgerSummary()...)
	if err != nil {
		return nil, notFound(err, EntityUserInfo)
	}
	return info, nil
}

// ListForGame returns every record of a game with users summarized.
func (s *LedgerService) ListForGame(ctx context.Context, gameID string) ([]models.UserGameInfo, error) {
	return repository.New[models.UserGameInfo](s.DB).FindMany(ctx,
		repository.Filter{"game_id": gameID},
		repository.Populate("UserRef"))
}

// Delete removes the pair's record. Back-references to it are left in place.
func (s *LedgerService) Delete(ctx context.Context, gameID, userID string) error {
	err := repository.New[models.UserGameInfo](s.DB).DeleteWhere(ctx,
		repository.Filter{"game_id": gameID, "user_id": userID})
	return notFound(err, EntityGameInfo)
}

package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"game-stats-system/models"
	"game-stats-system/repository"
)

// RelationService keeps the stored back-reference lists (game.events,
// game.userInfos, user.gameInfos) in step with the documents they point to.
type RelationService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewRelationService(db *gorm.DB, log *zap.Logger) *RelationService {
	return &RelationService{DB: db, Log: log}
}

// LinkEvent appends event to its game's event list. tx must be the
// transaction that inserted the event.
func (s *RelationService) LinkEvent(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	games := repository.New[models.Game](tx)
	game, err := games.FindByIDForUpdate(ctx, event.GameID)
	if err != nil {
		return notFound(err, EntityGame)
	}
	return games.UpdateColumns(ctx, game.ID, map[string]any{
		"event_ids": game.EventIDs.Append(event.ID),
	})
}

// LinkUserGameInfo appends a new player-stats record to its game's and its
// user's lists. A user that doesn't exist yet is skipped; the reconcile job
// picks it up once the user appears.
func (s *RelationService) LinkUserGameInfo(ctx context.Context, tx *gorm.DB, info *models.UserGameInfo) error {
	games := repository.New[models.Game](tx)
	game, err := games.FindByIDForUpdate(ctx, info.GameID)
	if err != nil {
		return notFound(err, EntityGame)
	}
	if err := games.UpdateColumns(ctx, game.ID, map[string]any{
		"user_info_ids": game.UserInfoIDs.Append(info.ID),
	}); err != nil {
		return err
	}

	users := repository.New[models.User](tx)
	user, err := users.FindByIDForUpdate(ctx, info.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		s.Log.Warn("[RELATIONS] user not found, gameInfos not linked",
			zap.String("user_id", info.UserID), zap.String("user_game_info_id", info.ID))
		return nil
	}
	if err != nil {
		return err
	}
	return users.UpdateColumns(ctx, user.ID, map[string]any{
		"game_info_ids": user.GameInfoIDs.Append(info.ID),
	})
}

// ReconcileReport counts the parent documents whose lists were repaired.
type ReconcileReport struct {
	GamesRepaired int
	UsersRepaired int
}

// Reconcile appends every existing event and player-stats record that is
// missing from its parents' lists. It never removes references.
func (s *RelationService) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	events, err := repository.New[models.Event](s.DB).FindMany(ctx, nil)
	if err != nil {
		return report, err
	}
	infos, err := repository.New[models.UserGameInfo](s.DB).FindMany(ctx, nil)
	if err != nil {
		return report, err
	}

	eventsByGame := make(map[string][]string)
	for _, e := range events {
		eventsByGame[e.GameID] = append(eventsByGame[e.GameID], e.ID)
	}
	infosByGame := make(map[string][]string)
	infosByUser := make(map[string][]string)
	for _, i := range infos {
		infosByGame[i.GameID] = append(infosByGame[i.GameID], i.ID)
		infosByUser[i.UserID] = append(infosByUser[i.UserID], i.ID)
	}

	games := repository.New[models.Game](s.DB)
	allGames, err := games.FindMany(ctx, nil)
	if err != nil {
		return report, err
	}
	for _, g := range allGames {
		eventIDs, eventsChanged := appendMissing(g.EventIDs, eventsByGame[g.ID])
		infoIDs, infosChanged := appendMissing(g.UserInfoIDs, infosByGame[g.ID])
		if !eventsChanged && !infosChanged {
			continue
		}
		if err := games.UpdateColumns(ctx, g.ID, map[string]any{
			"event_ids":     eventIDs,
			"user_info_ids": infoIDs,
		}); err != nil {
			return report, err
		}
		report.GamesRepaired++
	}

	users := repository.New[models.User](s.DB)
	allUsers, err := users.FindMany(ctx, nil)
	if err != nil {
		return report, err
	}
	for _, u := range allUsers {
		infoIDs, changed := appendMissing(u.GameInfoIDs, infosByUser[u.ID])
		if !changed {
			continue
		}
		if err := users.UpdateColumns(ctx, u.ID, map[string]any{"game_info_ids": infoIDs}); err != nil {
			return report, err
		}
		report.UsersRepaired++
	}

	return report, nil
}

func appendMissing(list models.RefList, ids []string) (models.RefList, bool) {
	changed := false
	for _, id := range ids {
		if !list.Contains(id) {
			list = list.Append(id)
			changed = true
		}
	}
	return list, changed
}

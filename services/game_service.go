package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"game-stats-system/models"
	"game-stats-system/repository"
)

type CreateGameInput struct {
	Name          string       `json:"name"`
	ShortName     string       `json:"shortName"`
	BeginnerStats models.Stats `json:"beginnerStats"`
}

// UpdateGameInput is a partial update; empty fields are left untouched.
type UpdateGameInput struct {
	Name          string       `json:"name"`
	ShortName     string       `json:"shortName"`
	BeginnerStats models.Stats `json:"beginnerStats"`
}

type GameService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewGameService(db *gorm.DB, log *zap.Logger) *GameService {
	return &GameService{DB: db, Log: log}
}

func (s *GameService) games() *repository.Repository[models.Game] {
	return repository.New[models.Game](s.DB)
}

// Create stores a new game. ShortName defaults to a slug of the name.
func (s *GameService) Create(ctx context.Context, in CreateGameInput) (*models.Game, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	shortName := strings.TrimSpace(in.ShortName)
	if shortName == "" {
		shortName = slug.Make(name)
	}
	beginner := in.BeginnerStats
	if beginner == nil {
		beginner = models.Stats{}
	}

	game := &models.Game{
		ID:            uuid.NewString(),
		Name:          name,
		ShortName:     shortName,
		BeginnerStats: beginner,
		EventIDs:      models.RefList{},
		UserInfoIDs:   models.RefList{},
	}
	if _, err := s.games().Insert(ctx, game); err != nil {
		return nil, err
	}

	s.Log.Info("[GAMES] created game", zap.String("id", game.ID), zap.String("short_name", shortName))
	return game, nil
}

// List returns every game with events and player records summarized.
func (s *GameService) List(ctx context.Context) ([]models.Game, error) {
	games, err := s.games().FindMany(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := s.expandLists(ctx, games); err != nil {
		return nil, err
	}
	return games, nil
}

func (s *GameService) Get(ctx context.Context, id string) (*models.Game, error) {
	game, err := s.games().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, EntityGame)
	}
	games := []models.Game{*game}
	if err := s.expandLists(ctx, games); err != nil {
		return nil, err
	}
	return &games[0], nil
}

func infoSummaryID(i *models.UserGameInfoSummary) string { return i.ID }

// expandLists populates Events (id, name) and UserInfos (id, game, user) of
// every game with one query per list type.
func (s *GameService) expandLists(ctx context.Context, games []models.Game) error {
	var eventIDs, infoIDs []string
	for _, g := range games {
		eventIDs = append(eventIDs, g.EventIDs...)
		infoIDs = append(infoIDs, g.UserInfoIDs...)
	}

	events, err := repository.New[models.EventSummary](s.DB).FindByIDs(ctx, eventIDs,
		func(e *models.EventSummary) string { return e.ID })
	if err != nil {
		return err
	}
	infos, err := repository.New[models.UserGameInfoSummary](s.DB).FindByIDs(ctx, infoIDs, infoSummaryID)
	if err != nil {
		return err
	}

	eventsByID := make(map[string]models.EventSummary, len(events))
	for _, e := range events {
		eventsByID[e.ID] = e
	}
	infosByID := make(map[string]models.UserGameInfoSummary, len(infos))
	for _, i := range infos {
		infosByID[i.ID] = i
	}

	for gi := range games {
		g := &games[gi]
		g.Events = make([]models.EventSummary, 0, len(g.EventIDs))
		for _, id := range g.EventIDs {
			if e, ok := eventsByID[id]; ok {
				g.Events = append(g.Events, e)
			}
		}
		g.UserInfos = make([]models.UserGameInfoSummary, 0, len(g.UserInfoIDs))
		for _, id := range g.UserInfoIDs {
			if i, ok := infosByID[id]; ok {
				g.UserInfos = append(g.UserInfos, i)
			}
		}
	}
	return nil
}

// Update applies the non-empty fields of in.
func (s *GameService) Update(ctx context.Context, id string, in UpdateGameInput) (*models.Game, error) {
	game, err := s.games().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, EntityGame)
	}

	columns := map[string]any{}
	if name := strings.TrimSpace(in.Name); name != "" {
		columns["name"] = name
	}
	if shortName := strings.TrimSpace(in.ShortName); shortName != "" {
		columns["short_name"] = shortName
	}
	if in.BeginnerStats != nil {
		columns["beginner_stats"] = in.BeginnerStats
	}
	if len(columns) > 0 {
		if err := s.games().UpdateColumns(ctx, game.ID, columns); err != nil {
			return nil, notFound(err, EntityGame)
		}
	}
	return s.Get(ctx, game.ID)
}

// Delete soft-deletes the game. Its events and player records stay.
func (s *GameService) Delete(ctx context.Context, id string) error {
	if err := s.games().DeleteByID(ctx, id); err != nil {
		return notFound(err, EntityGame)
	}
	s.Log.Info("[GAMES] deleted game", zap.String("id", id))
	return nil
}

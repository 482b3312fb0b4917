package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"game-stats-system/models"
	"game-stats-system/repository"
)

// CreateEventInput is the body of POST /events.
type CreateEventInput struct {
	Name      string       `json:"name"`
	StartDate *time.Time   `json:"startDate"`
	EndDate   *time.Time   `json:"endDate"`
	Game      string       `json:"game"`
	Rewards   models.Stats `json:"rewards"`
}

// EventService manages timed events and redeems their rewards into the
// player ledger.
type EventService struct {
	DB        *gorm.DB
	Ledger    *LedgerService
	Relations *RelationService
	Clock     clockwork.Clock
	Log       *zap.Logger
}

func NewEventService(db *gorm.DB, ledger *LedgerService, relations *RelationService, clock clockwork.Clock, log *zap.Logger) *EventService {
	return &EventService{DB: db, Ledger: ledger, Relations: relations, Clock: clock, Log: log}
}

func eventID(e *models.Event) string { return e.ID }

// Create validates and stores a new event and appends it to its game.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, invalid("name is required")
	case in.StartDate == nil || in.EndDate == nil:
		return nil, invalid("startDate and endDate are required")
	case in.EndDate.Before(*in.StartDate):
		return nil, invalid("endDate must not be before startDate")
	case in.Game == "":
		return nil, invalid("game is required")
	}

	event := &models.Event{
		ID:        uuid.NewString(),
		Name:      name,
		StartDate: *in.StartDate,
		EndDate:   *in.EndDate,
		GameID:    in.Game,
		Rewards:   in.Rewards,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repository.New[models.Game](tx).FindByID(ctx, in.Game); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("Game doesn't exist!")
			}
			return err
		}
		if _, err := repository.New[models.Event](tx).Insert(ctx, event); err != nil {
			return err
		}
		return s.Relations.LinkEvent(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("[EVENTS] created event",
		zap.String("id", event.ID),
		zap.String("game_id", event.GameID),
		zap.Time("start", event.StartDate),
		zap.Time("end", event.EndDate))

	return s.Get(ctx, event.ID, repository.Populate("GameRef"))
}

func (s *EventService) Get(ctx context.Context, id string, expand ...repository.Expand) (*models.Event, error) {
	event, err := repository.New[models.Event](s.DB).FindByID(ctx, id, expand...)
	if err != nil {
		return nil, notFound(err, EntityEvent)
	}
	return event, nil
}

// List returns every event with its game fully expanded.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	return repository.New[models.Event](s.DB).FindMany(ctx, nil, repository.Populate("Game"))
}

// ActiveForGame returns the game's events, in the game's order, that have
// not ended yet.
func (s *EventService) ActiveForGame(ctx context.Context, gameID string) ([]models.Event, error) {
	game, err := repository.New[models.Game](s.DB).FindByID(ctx, gameID)
	if err != nil {
		return nil, notFound(err, EntityGame)
	}
	events, err := repository.New[models.Event](s.DB).FindByIDs(ctx, game.EventIDs, eventID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	active := make([]models.Event, 0, len(events))
	for i := range events {
		if events[i].ListedAt(now) {
			active = append(active, events[i])
		}
	}
	return active, nil
}

// RedeemRewards applies the event's rewards to the user's stats for the
// event's game. The user must already have a stats record for that game.
// Redeeming twice applies the rewards twice.
func (s *EventService) RedeemRewards(ctx context.Context, eventID, userID string) (*models.UserGameInfo, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	switch event.StateAt(s.Clock.Now()) {
	case models.EventNotStarted:
		return nil, ErrNotYetActive
	case models.EventEnded:
		return nil, ErrAlreadyEnded
	}

	record, err := s.Ledger.Find(ctx, event.GameID, userID, false)
	if err != nil {
		return nil, err
	}
	if len(event.Rewards) == 0 {
		return record, nil
	}

	updated, err := s.Ledger.ApplyRewards(ctx, record, event.Rewards)
	if err != nil {
		return nil, err
	}

	s.Log.Info("[EVENTS] rewards sent",
		zap.String("event_id", event.ID),
		zap.String("user_id", userID),
		zap.Any("rewards", event.Rewards))
	return updated, nil
}

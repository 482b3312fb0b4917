package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"game-stats-system/models"
	"game-stats-system/testutil"
)

var epoch = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	DB        *gorm.DB
	Clock     *clockwork.FakeClock
	Relations *RelationService
	Ledger    *LedgerService
	Games     *GameService
	Users     *UserService
	Events    *EventService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	log := zap.NewNop()
	clock := clockwork.NewFakeClockAt(epoch)

	relations := NewRelationService(db, log)
	ledger := NewLedgerService(db, relations, log)
	return &testEnv{
		DB:        db,
		Clock:     clock,
		Relations: relations,
		Ledger:    ledger,
		Games:     NewGameService(db, log),
		Users:     NewUserService(db, log),
		Events:    NewEventService(db, ledger, relations, clock, log),
	}
}

func (e *testEnv) game(t *testing.T, name string, beginner models.Stats) *models.Game {
	t.Helper()
	g, err := e.Games.Create(context.Background(), CreateGameInput{Name: name, BeginnerStats: beginner})
	require.NoError(t, err)
	return g
}

func (e *testEnv) user(t *testing.T, externalID string) *models.User {
	t.Helper()
	u, err := e.Users.Create(context.Background(), CreateUserInput{UserID: externalID, FullName: "Player " + externalID})
	require.NoError(t, err)
	return u
}

// event creates an event on game whose window is [epoch+from, epoch+to].
func (e *testEnv) event(t *testing.T, gameID string, from, to time.Duration, rewards models.Stats) *models.Event {
	t.Helper()
	start, end := epoch.Add(from), epoch.Add(to)
	ev, err := e.Events.Create(context.Background(), CreateEventInput{
		Name:      "Event",
		StartDate: &start,
		EndDate:   &end,
		Game:      gameID,
		Rewards:   rewards,
	})
	require.NoError(t, err)
	return ev
}

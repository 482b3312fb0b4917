package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-stats-system/models"
	"game-stats-system/repository"
)

func TestReconcileRepairsMissingReferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", nil)

	// Written behind the services' back, so nothing is linked.
	_, err := repository.New[models.Event](env.DB).Insert(ctx, &models.Event{
		ID: "orphan-event", Name: "Orphan", GameID: game.ID,
		StartDate: epoch, EndDate: epoch.Add(time.Hour),
	})
	require.NoError(t, err)

	// Record created before its user existed.
	info, err := env.Ledger.GetOrCreate(ctx, game.ID, "late-user")
	require.NoError(t, err)
	_, err = repository.New[models.User](env.DB).Insert(ctx, &models.User{ID: "late-user", ExternalID: "ext-late"})
	require.NoError(t, err)

	report, err := env.Relations.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{GamesRepaired: 1, UsersRepaired: 1}, report)

	g, err := env.Games.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.True(t, g.EventIDs.Contains("orphan-event"))
	assert.True(t, g.UserInfoIDs.Contains(info.ID))

	u, err := env.Users.Get(ctx, "late-user")
	require.NoError(t, err)
	assert.Equal(t, models.RefList{info.ID}, u.GameInfoIDs)

	again, err := env.Relations.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{}, again)
}

func TestReconcileNeverRemovesReferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", nil)
	require.NoError(t, repository.New[models.Game](env.DB).UpdateColumns(ctx, game.ID,
		map[string]any{"event_ids": models.RefList{"deleted-event"}}))

	_, err := env.Relations.Reconcile(ctx)
	require.NoError(t, err)

	g, err := env.Games.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RefList{"deleted-event"}, g.EventIDs)
	assert.Empty(t, g.Events)
}

func TestAppendMissing(t *testing.T) {
	list, changed := appendMissing(models.RefList{"a"}, []string{"a", "b"})
	assert.True(t, changed)
	assert.Equal(t, models.RefList{"a", "b"}, list)

	_, changed = appendMissing(list, []string{"b"})
	assert.False(t, changed)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-stats-system/models"
)

func TestGetOrCreateCopiesBeginnerStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", models.Stats{"gold": 5, "level": 1})
	user := env.user(t, "ext-1")

	info, err := env.Ledger.GetOrCreate(ctx, game.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{"gold": 5, "level": 1}, info.Stats)

	_, err = env.Ledger.ApplyRewards(ctx, info, models.Stats{"gold": 100})
	require.NoError(t, err)

	reloaded, err := env.Games.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{"gold": 5, "level": 1}, reloaded.BeginnerStats)
}

func TestGetOrCreateReturnsExistingRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", models.Stats{"gold": 5})
	user := env.user(t, "ext-1")

	first, err := env.Ledger.GetOrCreate(ctx, game.ID, user.ID)
	require.NoError(t, err)
	_, err = env.Ledger.ReplaceStats(ctx, first, models.Stats{"gold": 42})
	require.NoError(t, err)

	second, err := env.Ledger.GetOrCreate(ctx, game.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, float64(42), second.Stats["gold"])

	var count int64
	require.NoError(t, env.DB.Model(&models.UserGameInfo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateLinksBackReferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", nil)
	user := env.user(t, "ext-1")

	info, err := env.Ledger.GetOrCreate(ctx, game.ID, user.ID)
	require.NoError(t, err)

	g, err := env.Games.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RefList{info.ID}, g.UserInfoIDs)
	require.Len(t, g.UserInfos, 1)
	assert.Equal(t, user.ID, g.UserInfos[0].UserID)

	u, err := env.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RefList{info.ID}, u.GameInfoIDs)
}

func TestGetOrCreateUnknownUserStillLinksGame(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", nil)

	info, err := env.Ledger.GetOrCreate(ctx, game.ID, "ghost")
	require.NoError(t, err)

	g, err := env.Games.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.True(t, g.UserInfoIDs.Contains(info.ID))
}

func TestGetOrCreateUnknownGame(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "ext-1")

	_, err := env.Ledger.GetOrCreate(context.Background(), "missing", user.ID)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, EntityGame, nf.Entity)
	assert.EqualError(t, err, "Game doesn't exist!")
}

func TestFindMissingRecord(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Ledger.Find(context.Background(), "g", "u", false)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "User info doesn't exist!")
}

func TestFindExpandsReferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", nil)
	user := env.user(t, "ext-1")
	_, err := env.Ledger.GetOrCreate(ctx, game.ID, user.ID)
	require.NoError(t, err)

	summary, err := env.Ledger.Find(ctx, game.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, &models.GameSummary{ID: game.ID, Name: "Space Raiders", ShortName: "space-raiders"}, summary.GameRef)
	assert.Equal(t, &models.UserSummary{ID: user.ID, FullName: "Player ext-1"}, summary.UserRef)
	assert.Nil(t, summary.Game)
	assert.Nil(t, summary.User)

	full, err := env.Ledger.Find(ctx, game.ID, user.ID, true)
	require.NoError(t, err)
	require.NotNil(t, full.Game)
	require.NotNil(t, full.User)
	assert.Equal(t, user.ID, full.User.ID)
	assert.Equal(t, "ext-1", full.User.ExternalID)
	assert.Equal(t, models.RefList{full.ID}, full.Game.UserInfoIDs)
}

func TestMutateStatsMissingRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gone := &models.UserGameInfo{ID: "gone"}

	_, err := env.Ledger.ReplaceStats(ctx, gone, models.Stats{"gold": 1})
	assert.EqualError(t, err, "User info doesn't exist!")

	_, err = env.Ledger.ApplyRewards(ctx, gone, models.Stats{"gold": 1})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, EntityUserInfo, nf.Entity)
}

func TestReplaceStatsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", models.Stats{"gold": 5, "xp": 10})
	user := env.user(t, "ext-1")
	info, err := env.Ledger.GetOrCreate(ctx, game.ID, user.ID)
	require.NoError(t, err)

	once, err := env.Ledger.ReplaceStats(ctx, info, models.Stats{"gold": 1})
	require.NoError(t, err)
	twice, err := env.Ledger.ReplaceStats(ctx, info, models.Stats{"gold": 1})
	require.NoError(t, err)

	assert.Equal(t, models.Stats{"gold": 1, "xp": 10}, once.Stats)
	assert.Equal(t, once.Stats, twice.Stats)
}

func TestApplyRewardsAccumulates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", models.Stats{"a": 1})
	user := env.user(t, "ext-1")
	info, err := env.Ledger.GetOrCreate(ctx, game.ID, user.ID)
	require.NoError(t, err)

	_, err = env.Ledger.ApplyRewards(ctx, info, models.Stats{"a": 1})
	require.NoError(t, err)
	got, err := env.Ledger.ApplyRewards(ctx, info, models.Stats{"a": 1, "b": 2})
	require.NoError(t, err)

	assert.Equal(t, models.Stats{"a": 3, "b": 2}, got.Stats)
	require.NotNil(t, got.UserRef)
	assert.Equal(t, "Player ext-1", got.UserRef.FullName)
}

func TestLedgerDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", nil)
	user := env.user(t, "ext-1")
	_, err := env.Ledger.GetOrCreate(ctx, game.ID, user.ID)
	require.NoError(t, err)

	require.NoError(t, env.Ledger.Delete(ctx, game.ID, user.ID))

	err = env.Ledger.Delete(ctx, game.ID, user.ID)
	assert.EqualError(t, err, "Game info doesn't exist!")
	_, err = env.Ledger.Find(ctx, game.ID, user.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForGame(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", nil)
	other := env.game(t, "Other", nil)
	a, b := env.user(t, "a"), env.user(t, "b")
	for _, pair := range [][2]string{{game.ID, a.ID}, {game.ID, b.ID}, {other.ID, a.ID}} {
		_, err := env.Ledger.GetOrCreate(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	infos, err := env.Ledger.ListForGame(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	for _, info := range infos {
		require.NotNil(t, info.UserRef)
		assert.Equal(t, info.UserID, info.UserRef.ID)
	}
	assert.Equal(t, "Player a", infos[0].UserRef.FullName)
}

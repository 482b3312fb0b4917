package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"game-stats-system/models"
)

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (m *memoryStore) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
		m.types = map[string]string{}
	}
	m.objects[key] = body
	m.types[key] = contentType
	return "https://cdn.test/" + key, nil
}

func TestExportGameStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", models.Stats{"gold": 5})
	user := env.user(t, "ext-1")
	_, err := env.Ledger.GetOrCreate(ctx, game.ID, user.ID)
	require.NoError(t, err)

	store := &memoryStore{}
	export := NewExportService(env.DB, env.Ledger, store, env.Clock, zap.NewNop())

	url, err := export.ExportGameStats(ctx, game.ID)
	require.NoError(t, err)

	key := fmt.Sprintf("exports/space-raiders/%d.json", epoch.Unix())
	assert.Equal(t, "https://cdn.test/"+key, url)
	require.Contains(t, store.objects, key)
	assert.Equal(t, "application/json", store.types[key])

	var snapshot struct {
		Game    map[string]any   `json:"game"`
		Players []map[string]any `json:"players"`
	}
	require.NoError(t, json.Unmarshal(store.objects[key], &snapshot))
	assert.Equal(t, game.ID, snapshot.Game["id"])
	require.Len(t, snapshot.Players, 1)
	assert.Equal(t, map[string]any{"gold": float64(5)}, snapshot.Players[0]["stats"])
	assert.Equal(t, map[string]any{"id": user.ID, "fullName": "Player ext-1"}, snapshot.Players[0]["user"])
}

func TestExportDisabledWithoutStore(t *testing.T) {
	env := newTestEnv(t)
	export := NewExportService(env.DB, env.Ledger, nil, env.Clock, zap.NewNop())

	_, err := export.ExportGameStats(context.Background(), "any")

	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestExportErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	game := env.game(t, "Space Raiders", nil)

	failing := NewExportService(env.DB, env.Ledger, &memoryStore{err: errors.New("boom")}, env.Clock, zap.NewNop())
	_, err := failing.ExportGameStats(ctx, game.ID)
	assert.ErrorContains(t, err, "upload snapshot")

	export := NewExportService(env.DB, env.Ledger, &memoryStore{}, env.Clock, zap.NewNop())
	_, err = export.ExportGameStats(ctx, "nope")
	assert.EqualError(t, err, "Game doesn't exist!")
}

// workers/user_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"game-stats-system/models"
)

// RemoteProfile matches one entry of the profile service's change feed.
type RemoteProfile struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	FirstName  *string   `json:"first_name,omitempty"`
	LastName   *string   `json:"last_name,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullName joins first and last name, falling back to the username.
func (p RemoteProfile) FullName() string {
	var parts []string
	if p.FirstName != nil && strings.TrimSpace(*p.FirstName) != "" {
		parts = append(parts, strings.TrimSpace(*p.FirstName))
	}
	if p.LastName != nil && strings.TrimSpace(*p.LastName) != "" {
		parts = append(parts, strings.TrimSpace(*p.LastName))
	}
	if len(parts) == 0 {
		return p.Username
	}
	return strings.Join(parts, " ")
}

type profileChangesResponse struct {
	Users []RemoteProfile `json:"users"`
}

// UserSyncWorker mirrors player profiles from the profile service into the
// users table, keyed by external user id.
type UserSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
	log          *zap.Logger
}

func NewUserSyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string, interval time.Duration, log *zap.Logger) *UserSyncWorker {
	return &UserSyncWorker{
		db:           db,
		interval:     interval,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Start runs the sync loop in the background until ctx is done.
func (w *UserSyncWorker) Start(ctx context.Context) {
	w.log.Info("[SYNC] starting user sync worker", zap.Duration("interval", w.interval))
	go w.run(ctx)
}

// run polls from the zero time on start, then from the newest remote
// updated_at seen so far. Local users.updated_at is not a cursor: ledger
// linking and reconcile bump it too.
func (w *UserSyncWorker) run(ctx context.Context) {
	var cursor time.Time
	poll := func() {
		result, err := w.SyncOnce(ctx, cursor)
		if err != nil {
			w.log.Error("[SYNC] sync batch failed", zap.Error(err))
			return
		}
		cursor = result.Cursor
	}

	poll()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			poll()
		case <-ctx.Done():
			w.log.Info("[SYNC] user sync worker stopped")
			return
		}
	}
}

// SyncResult reports one poll of the profile service.
type SyncResult struct {
	Upserted int
	Failed   int
	// Cursor is where the next poll starts: the newest remote updated_at of
	// the batch, or the previous cursor when any profile failed to write so
	// the batch is fetched again.
	Cursor time.Time
}

// SyncOnce fetches profiles changed since and upserts them.
func (w *UserSyncWorker) SyncOnce(ctx context.Context, since time.Time) (SyncResult, error) {
	result := SyncResult{Cursor: since}

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return result, fmt.Errorf("invalid profile service URL %q: %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("profile service request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return result, fmt.Errorf("profile service returned status %d: %s", resp.StatusCode, string(body))
	}

	var changes profileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return result, fmt.Errorf("failed to decode profile changes: %w", err)
	}

	newest := since
	for _, p := range changes.Users {
		if p.ExternalID == "" {
			continue
		}
		user := models.User{
			ID:          uuid.NewString(),
			ExternalID:  p.ExternalID,
			FullName:    p.FullName(),
			GameInfoIDs: models.RefList{},
		}
		err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "updated_at"}),
		}).Create(&user).Error
		if err != nil {
			w.log.Warn("[SYNC] failed to upsert user",
				zap.String("external_id", p.ExternalID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Upserted++
		if p.UpdatedAt.After(newest) {
			newest = p.UpdatedAt
		}
	}
	if result.Failed == 0 {
		result.Cursor = newest
	}

	if len(changes.Users) > 0 {
		w.log.Info("[SYNC] users synced",
			zap.Int("received", len(changes.Users)),
			zap.Int("upserted", result.Upserted),
			zap.Int("failed", result.Failed),
			zap.Time("cursor", result.Cursor))
	}
	return result, nil
}

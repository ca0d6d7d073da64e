package services

import (
	"context"
	"sync"

	"placemail/backend"
	"placemail/models"
	"placemail/utils"
)

// LogService caches the send-history page currently on screen. Mutations go
// through the backend and are followed by a full re-fetch; the cache is never
// spliced locally, so what the user sees is always a server state.
type LogService struct {
	logger *utils.Logger

	mu       sync.RWMutex
	logs     []models.SendLog
	lastPage models.PageRequest
}

// NewLogService creates an empty send-history cache.
func NewLogService(logger *utils.Logger) *LogService {
	if logger == nil {
		logger = utils.Log
	}
	return &LogService{logger: logger, lastPage: models.PageRequest{Page: 1, Limit: 20}}
}

// Refresh fetches the requested history page and replaces the cache.
func (s *LogService) Refresh(ctx context.Context, client *backend.Client, page models.PageRequest) error {
	logs, err := client.ListLogs(ctx, page)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.logs = logs
	s.lastPage = page
	s.mu.Unlock()

	s.logger.Debug("Send history refreshed: %d entries (page %d)", len(logs), page.Page)
	return nil
}

// RefreshLast re-fetches whichever page was loaded last. Used by the send
// pipeline's background refresh and by mutations.
func (s *LogService) RefreshLast(ctx context.Context, client *backend.Client) error {
	s.mu.RLock()
	page := s.lastPage
	s.mu.RUnlock()
	return s.Refresh(ctx, client, page)
}

// Snapshot returns a copy of the cached history page.
func (s *LogService) Snapshot() []models.SendLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SendLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// Delete removes one history entry, then re-fetches the full page from the
// backend. On failure the cache is left unchanged.
func (s *LogService) Delete(ctx context.Context, client *backend.Client, id string) error {
	if err := client.DeleteLog(ctx, id); err != nil {
		return err
	}
	if err := s.RefreshLast(ctx, client); err != nil {
		// The delete itself succeeded; surface the stale cache in logs only
		s.logger.Warn("History re-fetch after delete failed: %v", err)
	}
	return nil
}

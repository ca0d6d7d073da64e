package services

import (
	"context"
	"sync"
	"time"

	"placemail/backend"
	"placemail/models"
	"placemail/utils"
)

// TemplateService caches the template catalog for the process lifetime.
// Consumers read snapshots; only Refresh mutates the cache, wholesale.
type TemplateService struct {
	logger *utils.Logger

	mu        sync.RWMutex
	groups    []models.TemplateGroup
	fetchedAt time.Time
}

// NewTemplateService creates an empty template cache.
func NewTemplateService(logger *utils.Logger) *TemplateService {
	if logger == nil {
		logger = utils.Log
	}
	return &TemplateService{logger: logger}
}

// Refresh replaces the cached catalog with a fresh fetch. client must be
// bound to a session credential.
func (s *TemplateService) Refresh(ctx context.Context, client *backend.Client) error {
	groups, err := client.ListTemplates(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.groups = groups
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug("Template catalog refreshed: %d categories", len(groups))
	return nil
}

// Snapshot returns a copy of the cached catalog. An empty catalog means
// Refresh has not succeeded yet.
func (s *TemplateService) Snapshot() []models.TemplateGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TemplateGroup, len(s.groups))
	copy(out, s.groups)
	return out
}

// Find looks a template up by id across all categories.
func (s *TemplateService) Find(id string) (models.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, group := range s.groups {
		for _, t := range group.Templates {
			if t.ID == id {
				return t, true
			}
		}
	}
	return models.Template{}, false
}

// Fresh reports whether the catalog has been fetched within ttl.
func (s *TemplateService) Fresh(ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.fetchedAt.IsZero() && time.Since(s.fetchedAt) < ttl
}

package services

import (
	"context"
	"strings"
	"sync"

	"placemail/backend"
	"placemail/models"
	"placemail/utils"
)

// CompanyService caches company lists per batch. Deletes follow the same
// policy as send history: backend mutation, then a full re-fetch of the
// affected batch.
type CompanyService struct {
	logger *utils.Logger

	mu      sync.RWMutex
	batches map[string][]models.Company
}

// NewCompanyService creates an empty company cache.
func NewCompanyService(logger *utils.Logger) *CompanyService {
	if logger == nil {
		logger = utils.Log
	}
	return &CompanyService{logger: logger, batches: make(map[string][]models.Company)}
}

// Refresh fetches a batch's company list and replaces the cached copy.
func (s *CompanyService) Refresh(ctx context.Context, client *backend.Client, batchID string) error {
	companies, err := client.ListCompanies(ctx, batchID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.batches[batchID] = companies
	s.mu.Unlock()

	s.logger.Debug("Company list refreshed: batch=%s companies=%d", batchID, len(companies))
	return nil
}

// Snapshot returns a copy of the cached list for a batch, optionally
// filtered by a case-insensitive name substring.
func (s *CompanyService) Snapshot(batchID, nameFilter string) []models.Company {
	s.mu.RLock()
	cached := s.batches[batchID]
	s.mu.RUnlock()

	out := make([]models.Company, 0, len(cached))
	filter := strings.ToLower(strings.TrimSpace(nameFilter))
	for _, c := range cached {
		if filter == "" || strings.Contains(strings.ToLower(c.Name), filter) {
			out = append(out, c)
		}
	}
	return out
}

// DeleteCompany removes a company and re-fetches the batch.
func (s *CompanyService) DeleteCompany(ctx context.Context, client *backend.Client, companyID, batchID string) error {
	if err := client.DeleteCompany(ctx, companyID, batchID); err != nil {
		return err
	}
	if err := s.Refresh(ctx, client, batchID); err != nil {
		s.logger.Warn("Company re-fetch after delete failed: %v", err)
	}
	return nil
}

// DeletePosition removes a position and re-fetches the batch it belonged to.
// An empty batchID skips the re-fetch; the caller did not say which batch to
// reload.
func (s *CompanyService) DeletePosition(ctx context.Context, client *backend.Client, positionID, batchID string) error {
	if err := client.DeletePosition(ctx, positionID); err != nil {
		return err
	}
	if batchID == "" {
		return nil
	}
	if err := s.Refresh(ctx, client, batchID); err != nil {
		s.logger.Warn("Company re-fetch after position delete failed: %v", err)
	}
	return nil
}

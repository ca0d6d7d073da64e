package backend

import (
	"context"

	"placemail/models"
)

// ListCompanies fetches all companies registered for a batch. The endpoint
// returns a bare array rather than the usual success envelope.
func (c *Client) ListCompanies(ctx context.Context, batchID string) ([]models.Company, error) {
	var companies []models.Company
	if err := c.get(ctx, "/companies/batch/"+batchID, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// DeleteCompany removes a company from a batch.
func (c *Client) DeleteCompany(ctx context.Context, companyID, batchID string) error {
	return c.delete(ctx, "/companies/"+companyID+"/batch/"+batchID, nil)
}

// DeletePosition removes a single open position.
func (c *Client) DeletePosition(ctx context.Context, positionID string) error {
	return c.delete(ctx, "/companies/position/"+positionID, nil)
}

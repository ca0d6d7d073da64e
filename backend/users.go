package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"placemail/models"
)

type usersResponse struct {
	Success bool          `json:"success"`
	Users   []models.User `json:"users"`
}

// ListUsers fetches every console user.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp usersResponse
	if err := c.get(ctx, "/users", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Status: 200, Message: "user listing reported failure"}
	}
	return resp.Users, nil
}

// UserUpdate carries the two fields the console may change on a user.
type UserUpdate struct {
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// UpdateUser changes a user's role and active status.
func (c *Client) UpdateUser(ctx context.Context, id string, update UserUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return &APIError{Err: err}
	}
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/"+id, bytes.NewReader(data), "application/json", &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Status: 200, Message: resp.Error}
	}
	return nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.delete(ctx, "/users/"+id, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Status: 200, Message: resp.Error}
	}
	return nil
}

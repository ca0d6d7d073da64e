package api

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"placemail/backend"
	"placemail/compose"
	"placemail/utils"

	"github.com/gofiber/fiber/v2"
)

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/t", func(c *fiber.Ctx) error {
		return notifyError(c, err)
	})
	return app
}

func TestNotifyError_StatusMapping(t *testing.T) {
	if err := utils.InitI18n(); err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string // exact match when set
	}{
		{
			name:       "validation failure keeps its code",
			err:        &compose.ValidationError{Code: compose.CodeMissingToEmails},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   compose.CodeMissingToEmails,
		},
		{
			name:       "send in flight is a conflict",
			err:        compose.ErrSendInFlight,
			wantStatus: fiber.StatusConflict,
		},
		{
			name:       "backend failure surfaces the server message",
			err:        &backend.APIError{Status: 500, Message: "database down"},
			wantStatus: fiber.StatusBadGateway,
			wantError:  "database down",
		},
		{
			name:       "unknown errors stay internal",
			err:        errors.New("boom"),
			wantStatus: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := errorApp(tt.err).Test(httptest.NewRequest("GET", "/t", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			var body struct {
				Success bool   `json:"success"`
				Code    string `json:"code"`
				Error   string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Success {
				t.Error("success = true on an error response")
			}
			if body.Error == "" {
				t.Error("error message missing")
			}
			if tt.wantCode != "" && body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if tt.wantError != "" && body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

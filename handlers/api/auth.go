package api

import (
	"time"

	"placemail/config"
	"placemail/storage"
	"placemail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v5"
)

// AuthHandler manages console sessions. The console does not authenticate
// users itself; the user signs in against the placement backend and the
// resulting session credential is registered here. It is wrapped in a signed
// JWT inside the fiber session and replayed as the backend cookie on every
// call the console makes on the user's behalf.
type AuthHandler struct {
	store  *session.Store
	config *config.Config
	drafts *storage.DraftStore
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store *session.Store, cfg *config.Config, drafts *storage.DraftStore) *AuthHandler {
	return &AuthHandler{store: store, config: cfg, drafts: drafts}
}

// LoginRequest registers a backend session credential with the console.
type LoginRequest struct {
	Credential string `json:"credential"`
}

// HandleLogin stores the backend credential in a fresh console session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}
	if req.Credential == "" {
		return utils.BadRequestError("Credential is required", nil)
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return utils.InternalServerError("Session error", err)
	}

	token, err := h.signCredential(req.Credential)
	if err != nil {
		return utils.InternalServerError("Failed to establish session", err)
	}

	sess.Set("token", token)
	if err := sess.Save(); err != nil {
		return utils.InternalServerError("Failed to save session", err)
	}

	utils.Log.Info("Console session established: id=%s", sess.ID())

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// HandleLogout destroys the console session and its compose draft.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		h.drafts.Drop(sess.ID())
		if err := sess.Destroy(); err != nil {
			utils.Log.Warn("Failed to destroy session: %v", err)
		}
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *AuthHandler) signCredential(credential string) (string, error) {
	claims := jwt.MapClaims{
		"cred": credential,
		"exp":  time.Now().Add(h.config.SessionExpiry()).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.Session.Secret))
}

// SessionMiddleware rejects requests without a valid console session and
// exposes the backend credential and session id to handlers.
func SessionMiddleware(store *session.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return utils.UnauthorizedError("Invalid session", err)
		}

		raw, ok := sess.Get("token").(string)
		if !ok || raw == "" {
			return utils.UnauthorizedError("Not signed in", nil)
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Session.Secret), nil
		})
		if err != nil || !token.Valid {
			return utils.UnauthorizedError("Session expired", err)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.UnauthorizedError("Invalid session token", nil)
		}
		credential, _ := claims["cred"].(string)
		if credential == "" {
			return utils.UnauthorizedError("Invalid session token", nil)
		}

		c.Locals("credential", credential)
		c.Locals("sessionID", sess.ID())

		return c.Next()
	}
}

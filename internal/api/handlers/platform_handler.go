package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	config "autosocial/configs"
	"autosocial/internal/service"
	"autosocial/pkg/utils"
)

type PlatformHandler struct {
	tk  service.TokenService
	cfg config.Config
}

func NewPlatformHandler(tk service.TokenService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		tk:  tk,
		cfg: cfg,
	}
}

func (h *PlatformHandler) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.FacebookAppID,
		ClientSecret: h.cfg.FacebookAppSecret,
		RedirectURL:  h.cfg.FacebookRedirectURI,
		Scopes:       []string{"pages_manage_posts", "pages_read_engagement"},
		Endpoint:     facebook.Endpoint,
	}
}

// ConnectFacebook redirects to the provider consent screen. The signed
// session token rides along as the state parameter so the callback can
// tie the grant back to a logged-in user.
func (h *PlatformHandler) ConnectFacebook(c *fiber.Ctx) error {
	userID := GetUserID(c)

	state, err := utils.GenerateToken(h.cfg.SecretKey, userID, 15*time.Minute)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Redirect(h.oauthConfig().AuthCodeURL(state))
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if _, err := utils.ValidateToken(h.cfg.SecretKey, state); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	token, err := h.oauthConfig().Exchange(c.Context(), code)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}

	if err := h.tk.SaveShortLivedToken(c.Context(), token.AccessToken); err != nil {
		return renderError(c, err)
	}
	if _, err := h.tk.RenewLongLivedToken(c.Context()); err != nil {
		return renderError(c, err)
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

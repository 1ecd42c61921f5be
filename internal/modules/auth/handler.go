package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"modpaypal/internal/middleware"
	"modpaypal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service      *Service
	tokenTTL     time.Duration
	secureCookie bool
	wwwRoot      string
}

func NewHandler(service *Service, tokenTTL time.Duration, wwwRoot string) *Handler {
	return &Handler{
		service:      service,
		tokenTTL:     tokenTTL,
		secureCookie: strings.HasPrefix(wwwRoot, "https://"),
		wwwRoot:      strings.TrimRight(wwwRoot, "/"),
	}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/auth/me", h.GetMe)
}

// Login godoc
// @Summary      Log in
// @Description  Returns a JWT and sets it as the token cookie used by the activity page
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} map[string]interface{}
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		case errors.Is(err, ErrUserSuspended):
			response.Error(c, http.StatusForbidden, "USER_SUSPENDED", "Account is suspended")
		default:
			response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		}
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, result.AccessToken, int(h.tokenTTL.Seconds()), "/", "", h.secureCookie, true)

	data := gin.H{"user": toPublic(result.User), "token": result.AccessToken}
	if wants := c.Query("wantsurl"); h.isLocal(wants) {
		data["redirect"] = wants
	}
	response.Success(c, http.StatusOK, data)
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, gin.H{"status": "logged_out"})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get user")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": toPublic(user)})
}

// isLocal accepts only redirects back into this site.
func (h *Handler) isLocal(target string) bool {
	if target == "" {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if !u.IsAbs() {
		return strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//")
	}
	return strings.HasPrefix(target, h.wwwRoot+"/")
}

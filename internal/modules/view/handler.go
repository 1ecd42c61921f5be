package view

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"modpaypal/internal/middleware"
	"modpaypal/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/view.html"))

type Handler struct {
	service  *Service
	loginURL string
	wwwRoot  string
	loggerf  func(format string, args ...interface{})
}

func NewHandler(service *Service, loginURL, wwwRoot string, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loginURL: loginURL, wwwRoot: strings.TrimRight(wwwRoot, "/"), loggerf: loggerf}
}

// RegisterPageRoutes mounts the student page; guests are sent to login so the
// auth middleware must not reject them.
func (h *Handler) RegisterPageRoutes(r gin.IRouter, optionalAuth gin.HandlerFunc) {
	r.GET("/mod/paypal/view", optionalAuth, h.View)
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/paypal/instances/:id/status", h.Status)
}

type pageData struct {
	Page         *Page
	Amount       string
	StatusSocket string
}

// View godoc
// @Summary      PayPal activity page
// @Description  Shows the payment status or the PayPal checkout form
// @Tags         PayPal
// @Produce      html
// @Param        n query int true "Instance ID"
// @Success      200 {string} string "HTML page"
// @Failure      302 {string} string "Redirect to login"
// @Failure      404 {string} string "Instance not found"
// @Router       /mod/paypal/view [get]
func (h *Handler) View(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		wants := h.wwwRoot + c.Request.URL.RequestURI()
		c.Redirect(http.StatusFound, h.loginURL+"?wantsurl="+url.QueryEscape(wants))
		return
	}

	instanceID, ok := parseID(c.Query("n"))
	if !ok {
		c.String(http.StatusBadRequest, "You must specify an instance ID")
		return
	}

	page, err := h.service.Page(c.Request.Context(), userID, instanceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInstanceNotFound):
			c.String(http.StatusNotFound, "Activity not found")
		case errors.Is(err, ErrUserNotFound):
			c.Redirect(http.StatusFound, h.loginURL)
		default:
			h.loggerf("level=error msg=view page failed instance_id=%d user_id=%d err=%v", instanceID, userID, err)
			c.String(http.StatusInternalServerError, "Internal error")
		}
		return
	}

	data := pageData{Page: page, Amount: page.Instance.RequiredAmount().StringFixed(2)}
	if page.Status != StatusCompleted {
		data.StatusSocket = h.statusSocketURL(c)
	}
	c.Render(http.StatusOK, render.HTML{Template: pageTemplate, Name: "view.html", Data: data})
}

// Status godoc
// @Summary      PayPal activity status
// @Description  Same decision as the activity page, as JSON
// @Tags         PayPal
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Instance ID"
// @Success      200 {object} Page
// @Failure      404 {object} map[string]interface{}
// @Router       /paypal/instances/{id}/status [get]
func (h *Handler) Status(c *gin.Context) {
	userID := c.GetInt64("user_id")
	instanceID, ok := parseID(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return
	}

	page, err := h.service.Page(c.Request.Context(), userID, instanceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInstanceNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Activity not found")
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not found")
		default:
			h.loggerf("level=error msg=status lookup failed instance_id=%d user_id=%d err=%v", instanceID, userID, err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load status")
		}
		return
	}
	response.Success(c, http.StatusOK, page)
}

// statusSocketURL is empty when the page was authenticated by a header the
// browser cannot replay.
func (h *Handler) statusSocketURL(c *gin.Context) string {
	token, err := c.Cookie(middleware.TokenCookie)
	if err != nil || token == "" {
		return ""
	}
	base := h.wwwRoot
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/paypal/status?token=" + url.QueryEscape(token)
}

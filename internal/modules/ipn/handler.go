package ipn

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"modpaypal/internal/middleware"

	"github.com/gin-gonic/gin"
)

const maxIPNBody = 64 << 10

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

// RegisterRoutes mounts the listener under its own recovery so PayPal never
// sees an error page.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/mod/paypal", middleware.SilentRecovery())
	g.POST("/ipn", h.Notify)
}

// Notify godoc
// @Summary      PayPal Instant Payment Notification listener
// @Description  Verifies the notification with PayPal, records the payment and updates completion
// @Tags         PayPal
// @Accept       x-www-form-urlencoded
// @Success      200 {string} string ""
// @Failure      400 {string} string ""
// @Router       /mod/paypal/ipn [post]
func (h *Handler) Notify(c *gin.Context) {
	rawBody, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIPNBody+1))
	if err != nil {
		h.loggerf("level=error msg=read ipn body failed err=%v", err)
		c.Status(http.StatusBadRequest)
		return
	}
	if len(rawBody) > maxIPNBody {
		h.loggerf("level=warn msg=ipn body too large remote=%s limit=%d", c.ClientIP(), maxIPNBody)
		c.Status(http.StatusBadRequest)
		return
	}
	body := strings.TrimSpace(string(rawBody))

	if c.Request.URL.RawQuery != "" || body == "" {
		h.loggerf("level=warn msg=ipn request rejected remote=%s query=%q body_len=%d", c.ClientIP(), c.Request.URL.RawQuery, len(body))
		c.Status(http.StatusBadRequest)
		return
	}

	// PayPal may hang up before we answer; the verifier has its own timeout.
	ctx := context.WithoutCancel(c.Request.Context())
	if _, err := h.service.Handle(ctx, body); err != nil {
		if errors.Is(err, ErrMalformedRequest) {
			h.loggerf("level=warn msg=ipn body malformed remote=%s err=%v", c.ClientIP(), err)
			c.Status(http.StatusBadRequest)
			return
		}
		h.loggerf("level=info msg=ipn stopped err=%v", err)
	}
	c.Status(http.StatusOK)
}

package app

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"modpaypal/internal/config"
	"modpaypal/internal/middleware"
	"modpaypal/internal/modules/auth"
	"modpaypal/internal/modules/completion"
	"modpaypal/internal/modules/instance"
	"modpaypal/internal/modules/ipn"
	"modpaypal/internal/modules/notification"
	"modpaypal/internal/modules/view"
	jwtsvc "modpaypal/internal/pkg/jwt"
	"modpaypal/internal/repository"
)

// App is the wired HTTP surface of the activity.
type App struct {
	Router     *gin.Engine
	JWT        *jwtsvc.Service
	hub        *notification.Hub
	dispatcher *notification.Dispatcher
}

type Option func(*options)

type options struct {
	loggerf  func(format string, args ...interface{})
	verifier ipn.Verifier
}

func WithLogger(loggerf func(format string, args ...interface{})) Option {
	return func(o *options) { o.loggerf = loggerf }
}

// WithVerifier replaces the PayPal post-back client.
func WithVerifier(v ipn.Verifier) Option {
	return func(o *options) { o.verifier = v }
}

func New(cfg *config.Config, db *gorm.DB, opts ...Option) *App {
	o := options{loggerf: log.Printf}
	for _, opt := range opts {
		opt(&o)
	}
	if o.verifier == nil {
		o.verifier = ipn.NewPayPalVerifier(cfg.PayPalURL(), cfg.PayPalVerifyTimeout)
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	instanceRepo := repository.NewInstanceRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	ipnLogRepo := repository.NewIPNLogRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := notification.NewHub()
	dispatcher := notification.NewDispatcher(messageRepo, hub, cfg.NotifyQueueSize, o.loggerf)
	dispatcher.Start()

	authHandler := auth.NewHandler(auth.NewService(userRepo, j), cfg.JWTTTL, cfg.WWWRoot)

	ipnService := ipn.NewService(
		userRepo,
		courseRepo,
		instanceRepo,
		txnRepo,
		completionRepo,
		ipnLogRepo,
		o.verifier,
		dispatcher,
		hub,
		ipn.Options{SiteName: cfg.SiteName, WWWRoot: cfg.WWWRoot},
		o.loggerf,
	)
	ipnHandler := ipn.NewHandler(ipnService, o.loggerf)
	journalHandler := ipn.NewJournalHandler(ipnLogRepo)

	viewService := view.NewService(userRepo, courseRepo, instanceRepo, txnRepo, view.Options{
		WWWRoot:   cfg.WWWRoot,
		PayPalURL: cfg.PayPalURL(),
	})
	viewHandler := view.NewHandler(viewService, cfg.LoginURL, cfg.WWWRoot, o.loggerf)

	instanceHandler := instance.NewHandler(instance.NewService(instanceRepo, courseRepo), o.loggerf)
	completionHandler := completion.NewHandler(completion.NewService(instanceRepo, txnRepo))
	inboxHandler := notification.NewHandler(messageRepo)
	wsHandler := notification.NewWSHandler(hub, j, cfg.WWWRoot)

	r := gin.New()
	r.Use(gin.Logger())

	// PayPal posts here; it gets its own silent recovery.
	ipnHandler.RegisterRoutes(r)

	site := r.Group("/", middleware.ErrorLogger())
	viewHandler.RegisterPageRoutes(site, middleware.OptionalAuth(j))
	wsHandler.RegisterRoutes(site)

	v1 := r.Group("/api/v1", middleware.ErrorLogger(), middleware.CORS())
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			viewHandler.RegisterRoutes(protected)
			completionHandler.RegisterRoutes(protected)
			inboxHandler.RegisterRoutes(protected)
			instanceHandler.RegisterRoutes(protected, middleware.RequireCourseEditor(courseRepo))

			admin := protected.Group("/", middleware.AdminOnly())
			journalHandler.RegisterRoutes(admin)
		}
	}

	return &App{Router: r, JWT: j, hub: hub, dispatcher: dispatcher}
}

// Close drains queued notifications and disconnects websocket clients.
func (a *App) Close() {
	a.dispatcher.Close()
	a.hub.Close()
}

package router

import (
	"context"
	"net/http"

	authsvc "wealthdesk-backend/internal/application/auth"
	dashsvc "wealthdesk-backend/internal/application/dashboard"
	emailsvc "wealthdesk-backend/internal/application/emails"
	healthsvc "wealthdesk-backend/internal/application/health"
	importsvc "wealthdesk-backend/internal/application/imports"
	mastersvc "wealthdesk-backend/internal/application/master"
	offersvc "wealthdesk-backend/internal/application/offers"
	reqsvc "wealthdesk-backend/internal/application/requests"
	txsvc "wealthdesk-backend/internal/application/transactions"
	uploadsvc "wealthdesk-backend/internal/application/uploads"
	"wealthdesk-backend/internal/config"
	"wealthdesk-backend/internal/infrastructure/cache"
	"wealthdesk-backend/internal/infrastructure/database"
	authhandler "wealthdesk-backend/internal/interfaces/handlers/auth"
	dashhandler "wealthdesk-backend/internal/interfaces/handlers/dashboard"
	healthhandler "wealthdesk-backend/internal/interfaces/handlers/health"
	importhandler "wealthdesk-backend/internal/interfaces/handlers/imports"
	masterhandler "wealthdesk-backend/internal/interfaces/handlers/master"
	offerhandler "wealthdesk-backend/internal/interfaces/handlers/offers"
	reqhandler "wealthdesk-backend/internal/interfaces/handlers/requests"
	txhandler "wealthdesk-backend/internal/interfaces/handlers/transactions"
	uploadhandler "wealthdesk-backend/internal/interfaces/handlers/uploads"
	"wealthdesk-backend/internal/metrics"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const serviceName = "wealthdesk-api"

// Deps are the stores and outbound clients the routes are built on.
// DB and Rdb may be nil; without a database only health and metrics are served.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Rdb     *redis.Client
	Mail    emailsvc.Sender
	Storage uploadsvc.Storage
}

// EmailSender picks Brevo when SENDINBLUE_API_KEY is set, then SMTP when
// SMTP_HOST is set. Nil means mail is not configured.
func EmailSender(cfg *config.Config) emailsvc.Sender {
	loginURL := cfg.FrontendURL + "/login"
	switch {
	case cfg.SendinblueAPIKey != "":
		return emailsvc.NewBrevo(cfg.SendinblueAPIKey, cfg.MailFrom, loginURL, cfg.MailTimeout)
	case cfg.SMTPHost != "":
		return emailsvc.NewSMTP(&emailsvc.SMTPClient{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, loginURL, cfg.MailTimeout)
	}
	log.Warn().Msg("router: no email provider configured, emails will not be sent")
	return nil
}

// CreateApp opens the database and Redis from cfg and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	} else {
		log.Warn().Msg("router: DATABASE_URL not set, only health routes are served")
	}

	rdb, err := cache.Open(context.Background(), cfg.RedisURL, cfg.StoreTimeout)
	if err != nil {
		return nil, nil, nil, err
	}

	var storage uploadsvc.Storage
	if cfg.SupabaseURL != "" {
		storage = uploadsvc.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseSecretKey, cfg.StoreTimeout)
	}

	app := NewApp(Deps{Config: cfg, DB: db, Rdb: rdb, Mail: EmailSender(cfg), Storage: storage})
	return app, db, rdb, nil
}

// longRunningRoutes are exempt from the whole-request timeout.
var longRunningRoutes = []string{
	"/api/clients/bulk-upload",
	"/api/transactions/bulk-upload",
	"/api/sync/",
}

// NewApp registers global middleware and every route.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	rec := healthsvc.Recorder{Rdb: d.Rdb}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rec),
		EnableTrustedProxyCheck: true,
		BodyLimit:               20 * 1024 * 1024,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DevPassword:    cfg.DevPassword,
	}))
	app.Use(middleware.Metrics())
	app.Use(middleware.HealthMarker(rec))
	// Imports bound each row and email themselves.
	app.Use(middleware.RequestTimeout(cfg.StoreTimeout, longRunningRoutes...))

	hs := &healthsvc.Service{Rdb: d.Rdb, AdminKey: cfg.HealthAdminKey, Service: serviceName}
	if d.DB != nil {
		hs.DB = &database.Pinger{DB: d.DB}
	}
	hh := &healthhandler.Handlers{Service: hs}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if d.DB == nil {
		return app
	}
	db := d.DB

	// Auth
	as := &authsvc.Service{
		DB:          db,
		Rdb:         d.Rdb,
		Issuer:      authsvc.NewIssuer(cfg.JWTSecret, cfg.JWTTTL),
		EmailSender: d.Mail,
		FrontendURL: cfg.FrontendURL,
	}
	requireAuth := middleware.RequireAuth(as)
	ah := &authhandler.Handlers{Service: as}
	ag := app.Group("/api/auth")
	ag.Post("/login", ah.Login)
	ag.Post("/signup", ah.Signup)
	ag.Post("/forgot-password", ah.ForgotPassword)
	ag.Post("/reset-password", ah.ResetPassword)
	ag.Get("/session", requireAuth, ah.Session)
	ag.Post("/logout", requireAuth, ah.Logout)

	// Masters
	mh := &masterhandler.Handlers{Service: mastersvc.NewService(db)}
	mg := app.Group("/api/mst", requireAuth)
	masters := middleware.AuthorizePermission(constants.ManageMasters)
	mg.Get("/roles", masters, mh.ListRoles)
	mg.Get("/roles/:id", masters, mh.GetRole)
	mg.Post("/roles", masters, mh.CreateRole)
	mg.Put("/roles/:id", masters, mh.UpdateRole)
	mg.Delete("/roles/:id", masters, mh.DeleteRole)
	mg.Get("/users", masters, mh.ListUsers)
	mg.Get("/users/:id", masters, mh.GetUser)
	mg.Post("/users", masters, mh.CreateUser)
	mg.Put("/users/:id", masters, mh.UpdateUser)
	mg.Delete("/users/:id", masters, mh.DeleteUser)
	mg.Get("/branches", masters, mh.ListBranches)
	mg.Get("/branches/:id", masters, mh.GetBranch)
	mg.Post("/branches", masters, mh.CreateBranch)
	mg.Put("/branches/:id", masters, mh.UpdateBranch)
	mg.Delete("/branches/:id", masters, mh.DeleteBranch)
	viewClients := middleware.AuthorizePermission(constants.ViewClients)
	manageClients := middleware.AuthorizePermission(constants.ManageClients)
	mg.Get("/clients", viewClients, mh.ListClients)
	mg.Get("/clients/:id", viewClients, mh.GetClient)
	mg.Post("/clients", manageClients, mh.CreateClient)
	mg.Put("/clients/:id", manageClients, mh.UpdateClient)
	mg.Delete("/clients/:id", manageClients, mh.DeleteClient)

	// Requests
	rh := &reqhandler.Handlers{Service: reqsvc.NewService(db, d.Mail)}
	rg := app.Group("/api/requests", requireAuth)
	viewReq := middleware.AuthorizePermission(constants.ViewRequests)
	createReq := middleware.AuthorizePermission(constants.CreateRequests)
	reviewReq := middleware.AuthorizePermission(constants.ReviewRequests)
	rg.Get("/investment", viewReq, rh.ListInvestments)
	rg.Post("/investment", createReq, rh.CreateInvestment)
	rg.Patch("/investment/:id/status", reviewReq, rh.ReviewInvestment)
	rg.Get("/withdrawal", viewReq, rh.ListWithdrawals)
	rg.Post("/withdrawal", createReq, rh.CreateWithdrawal)
	rg.Patch("/withdrawal/:id/status", reviewReq, rh.ReviewWithdrawal)
	rg.Get("/referral", viewReq, rh.ListReferrals)
	rg.Post("/referral", createReq, rh.CreateReferral)
	rg.Patch("/referral/:id/status", reviewReq, rh.ReviewReferral)

	// Imports and transactions
	is := &importsvc.Service{
		DB:           db,
		EmailSender:  d.Mail,
		LoginURL:     cfg.FrontendURL + "/login",
		StoreTimeout: cfg.StoreTimeout,
		MailTimeout:  cfg.MailTimeout,
	}
	ih := &importhandler.Handlers{Service: is}
	importData := middleware.AuthorizePermission(constants.ImportData)

	txh := &txhandler.Handlers{Service: txsvc.NewService(db), Imports: is}
	tg := app.Group("/api/transactions", requireAuth)
	tg.Get("/", middleware.AuthorizePermission(constants.ViewTransactions), txh.List)
	tg.Post("/", middleware.AuthorizePermission(constants.ManageTransactions), txh.Create)
	tg.Post("/bulk-upload", importData, txh.BulkUpload)

	app.Post("/api/clients/bulk-upload", requireAuth, importData, ih.ClientsBulkUpload)
	app.Get("/api/imports/batches", requireAuth, importData, ih.ListBatches)

	sg := app.Group("/api/sync", middleware.SyncToken(cfg.SyncAPIToken))
	sg.Post("/clients", ih.SyncClients)
	sg.Post("/transactions", ih.SyncTransactions)

	// Dashboard
	dh := &dashhandler.Handlers{Service: &dashsvc.Service{DB: db, CommissionRate: decimal.NewFromFloat(cfg.CommissionRate)}}
	dg := app.Group("/api/dashboard", requireAuth, middleware.AuthorizePermission(constants.ViewDashboard))
	dg.Get("/stats", dh.Stats)
	dg.Get("/totals", dh.Totals)
	dg.Get("/monthly-trend", dh.MonthlyTrend)
	dg.Get("/branch-performance", dh.BranchPerformance)
	dg.Get("/kyc-status", dh.KYCStatus)
	dg.Get("/demographics", dh.Demographics)
	dg.Get("/revenue-breakdown", dh.RevenueBreakdown)
	dg.Get("/top-performers", dh.TopPerformers)
	dg.Get("/reconciliation", middleware.AuthorizePermission(constants.ViewReconciliation), dh.Reconciliation)

	// Offers and uploads
	oh := &offerhandler.Handlers{Service: offersvc.NewService(db)}
	og := app.Group("/api/offers", requireAuth)
	manageOffers := middleware.AuthorizePermission(constants.ManageOffers)
	og.Get("/", middleware.AuthorizePermission(constants.ViewOffers), oh.List)
	og.Get("/:id", middleware.AuthorizePermission(constants.ViewOffers), oh.Get)
	og.Post("/", manageOffers, oh.Create)
	og.Put("/:id", manageOffers, oh.Update)
	og.Delete("/:id", manageOffers, oh.Delete)

	uh := &uploadhandler.Handlers{Service: &uploadsvc.Service{Storage: d.Storage, DB: db, SupabaseURL: cfg.SupabaseURL}}
	ug := app.Group("/api/uploads", requireAuth)
	ug.Post("/offer-image", manageOffers, uh.OfferImage)
	ug.Post("/kyc-document", middleware.AuthorizePermission(constants.UploadDocuments), uh.KYCDocument)

	return app
}

// Handler adapts the app for net/http hosts such as serverless functions.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

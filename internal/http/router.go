package http

import (
	"log/slog"
	"time"

	"github.com/finsight/gateway/internal/cache"
	"github.com/finsight/gateway/internal/clients/analysis"
	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/http/handlers"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/finsight/gateway/internal/mailer"
	"github.com/finsight/gateway/internal/observability"
	"github.com/finsight/gateway/internal/proxy"
	"github.com/finsight/gateway/internal/repo/postgres"
	"github.com/finsight/gateway/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Cfg      config.Config
	Pool     *pgxpool.Pool
	Sessions session.Store
	Mail     mailer.Mailer
	Analysis *analysis.Client
	Proxy    *proxy.Proxy
	Prom     *observability.Prom
	PingDB   func() error
	PingRed  func() error
}

func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	if d.Cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("finsight-gateway"))
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(d.Pool)
	goalsRepo := postgres.NewGoalsRepo(d.Pool)
	txnsRepo := postgres.NewTransactionsRepo(d.Pool)
	expensesRepo := postgres.NewExpensesRepo(d.Pool)

	// handlers
	health := handlers.NewHealthHandler(d.PingDB, d.PingRed)
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, d.Sessions, d.Cfg)
	settingsHandler := handlers.NewSettingsHandler(usersRepo, d.Sessions, d.Mail, d.Cfg, d.Prom)
	profileHandler := handlers.NewProfileHandler(usersRepo)
	goalsHandler := handlers.NewGoalsHandler(goalsRepo)
	txnsHandler := handlers.NewTransactionsHandler(txnsRepo, goalsRepo)
	expensesHandler := handlers.NewExpensesHandler(expensesRepo)
	analysisHandler := handlers.NewAnalysisHandler(expensesRepo, goalsRepo, d.Analysis, cache.New(30*time.Second), d.Prom)

	sessionMW := middlewares.NewSessionMiddleware(d.Sessions)

	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The proxy streams request bodies straight through, so it must be
	// registered without the body-reading middleware the API group gets.
	if d.Proxy != nil {
		r.Any(proxy.Prefix+"/*path", sessionMW.RequireSession(), gin.WrapH(d.Proxy))
	}

	api := r.Group("/", middlewares.MaxBodyBytes(1<<20), middlewares.RequireJSON())

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("/", sessionMW.RequireSession())

	authed.POST("/auth/logout", authHandler.Logout)

	// sensitive-settings gate
	otpLimiter := middlewares.NewRateLimiter(5, 10*time.Minute)

	authed.GET("/settings", settingsHandler.Bootstrap)
	authed.POST("/settings/request-otp",
		otpLimiter.RateLimiterMiddleware(middlewares.KeyBySessionOrIP),
		settingsHandler.RequestOTP,
	)
	authed.POST("/settings/verify-otp", settingsHandler.VerifyOTP)
	authed.POST("/settings/lock", settingsHandler.Lock)
	authed.POST("/settings/update-profile", settingsHandler.UpdateProfile)

	// profile + survey (ungated)
	authed.GET("/profile", profileHandler.GetProfile)
	authed.PUT("/profile/preferences", profileHandler.UpdatePreferences)
	authed.POST("/profile/survey", profileHandler.CompleteSurvey)

	// goals
	authed.POST("/goals", goalsHandler.CreateGoal)
	authed.GET("/goals", goalsHandler.ListGoals)
	authed.GET("/goals/:id", goalsHandler.GetGoalByID)
	authed.PUT("/goals/:id", goalsHandler.UpdateGoal)
	authed.DELETE("/goals/:id", goalsHandler.DeleteGoal)
	authed.GET("/goals/:id/feasibility", analysisHandler.AssessGoalFeasibility)

	// transactions
	authed.POST("/transactions", txnsHandler.CreateTransaction)
	authed.GET("/transactions", txnsHandler.ListTransactions)
	authed.GET("/transactions/:id", txnsHandler.GetTransactionByID)
	authed.DELETE("/transactions/:id", txnsHandler.DeleteTransaction)

	// expenses
	authed.POST("/expenses", expensesHandler.CreateExpense)
	authed.GET("/expenses", expensesHandler.ListExpenses)
	authed.DELETE("/expenses/:id", expensesHandler.DeleteExpense)
	authed.POST("/expenses/analyse", analysisHandler.AnalyseExpenses)

	return r
}

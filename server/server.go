package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/lotto-ledger/auth"
	"github.com/Digital-Creators-Team/lotto-ledger/config"
	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
	"github.com/Digital-Creators-Team/lotto-ledger/metrics"
	"github.com/Digital-Creators-Team/lotto-ledger/middleware"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/jackpot"
)

const requestTimeout = 15 * time.Second

// App is the HTTP face of the ledger.
type App struct {
	engine         *gin.Engine
	config         *config.Config
	logger         zerolog.Logger
	ledger         *lotto.Ledger
	wallets        WalletStore
	reports        ReportReader
	jackpotService *jackpot.Service
	ledgerHandler  *LedgerHandler
	jackpotHandler *JackpotHandler
	httpServer     *http.Server
	onShutdown     []func()
}

// Options holds server dependencies. Reports may be nil.
type Options struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Ledger  *lotto.Ledger
	Wallets WalletStore
	Reports ReportReader
	Jackpot *jackpot.Service
}

// New creates the application; call RegisterRoutes before Run.
func New(opts Options) *App {
	// Jackpot amounts are exact to the cent, well inside float64 range.
	decimal.MarshalJSONWithoutQuotes = true

	if opts.Config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		engine:         gin.New(),
		config:         opts.Config,
		logger:         opts.Logger,
		ledger:         opts.Ledger,
		wallets:        opts.Wallets,
		reports:        opts.Reports,
		jackpotService: opts.Jackpot,
	}
	if app.jackpotService == nil {
		app.jackpotService = jackpot.NewService(jackpot.ServiceConfig{
			BroadcastInterval: 2 * time.Second,
			Logger:            opts.Logger,
		})
		app.OnShutdown(app.jackpotService.Stop)
	}
	app.ledgerHandler = NewLedgerHandler(app)
	app.jackpotHandler = NewJackpotHandler(app.jackpotService, opts.Logger)
	return app
}

// UseCommonMiddlewares adds common middlewares to the application
func (a *App) UseCommonMiddlewares() {
	a.engine.Use(middleware.Recovery(a.logger))
	a.engine.Use(middleware.TraceID())
	a.engine.Use(metrics.Instrument())
	a.engine.Use(middleware.Logging(a.logger))
	if a.config.Server.EnableCORS {
		a.engine.Use(middleware.CORS())
	}
}

// RegisterHealthCheck adds health and metrics endpoints
func (a *App) RegisterHealthCheck() {
	a.engine.GET("/health", a.healthCheck)
	a.engine.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (a *App) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now(),
		"environment": a.config.Environment,
		"draws":       a.ledger.DrawCount(),
	})
}

// RegisterRoutes registers the API.
//
// Routes registered:
//   - GET  /api/ledger                        -> LedgerHandler.Ledger
//   - GET  /api/draws                         -> LedgerHandler.ListDraws
//   - GET  /api/draws/:number                 -> LedgerHandler.GetDraw
//   - GET  /api/jackpot/updates               -> JackpotHandler.StreamUpdates (SSE)
//   - GET  /api/jackpot/updates/ws            -> JackpotHandler.StreamUpdatesWebSocket
//   - GET  /api/wallet                        -> LedgerHandler.Wallet (player)
//   - POST /api/offices/:office/tickets       -> LedgerHandler.IssueTicket (player)
//   - POST /api/offices/:office/redemptions   -> LedgerHandler.Redeem (player)
//   - POST /api/draws                         -> LedgerHandler.ConductDraw (coordinator)
func (a *App) RegisterRoutes() {
	api := a.engine.Group("/api")

	public := api.Group("", middleware.Timeout(requestTimeout))
	public.GET("/ledger", a.ledgerHandler.Ledger)
	public.GET("/draws", a.ledgerHandler.ListDraws)
	public.GET("/draws/:number", a.ledgerHandler.GetDraw)

	// Streams are long-lived and stay outside the request timeout.
	api.GET("/jackpot/updates", a.jackpotHandler.StreamUpdates)
	api.GET("/jackpot/updates/ws", a.jackpotHandler.StreamUpdatesWebSocket)

	authed := api.Group("", auth.JWTMiddleware(a.config.JWT.Secret, a.logger), middleware.Timeout(requestTimeout))

	player := authed.Group("", a.PlayerContextMiddleware())
	player.GET("/wallet", a.ledgerHandler.Wallet)
	player.POST("/offices/:office/tickets", a.ledgerHandler.IssueTicket)
	player.POST("/offices/:office/redemptions", a.ledgerHandler.Redeem)

	authed.POST("/draws", auth.RequireRole(auth.RoleCoordinator), a.ledgerHandler.ConductDraw)

	a.logger.Info().Int("offices", len(a.ledger.Offices())).Msg("API routes registered under /api")
}

// Router returns the Gin engine for custom route registration
func (a *App) Router() *gin.Engine {
	return a.engine
}

// JackpotService returns the live pool feed.
func (a *App) JackpotService() *jackpot.Service {
	return a.jackpotService
}

// OnShutdown registers a function to be called on shutdown
func (a *App) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

func (a *App) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunWithContext(ctx)
}

// RunWithContext starts the HTTP server and shuts it down when ctx ends.
func (a *App) RunWithContext(ctx context.Context) error {
	a.httpServer = a.newHTTPServer()

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

func (a *App) shutdown() error {
	a.logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting requests before the collaborators go away.
	err := a.httpServer.Shutdown(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("Error during server shutdown")
	}
	for i := len(a.onShutdown) - 1; i >= 0; i-- {
		a.onShutdown[i]()
	}

	a.logger.Info().Msg("Server shutdown complete")
	return err
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

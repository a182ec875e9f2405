package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/OSejal/Packloop/internal/auth"
	"github.com/OSejal/Packloop/internal/config"
	"github.com/OSejal/Packloop/internal/handlers"
	"github.com/OSejal/Packloop/internal/migrations"
	"github.com/OSejal/Packloop/internal/models"
	"github.com/OSejal/Packloop/internal/payments"
	"github.com/OSejal/Packloop/internal/services"
	"github.com/OSejal/Packloop/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg    *config.Config
	dbPool *pgxpool.Pool
	echo   *echo.Echo

	// Handlers
	userHandler   *handlers.UserHandler
	orderHandler  *handlers.OrderHandler
	walletHandler *handlers.WalletHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg: cfg,
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase инициализирует подключение к базе данных и выполняет миграции.
func (app *App) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}

	// Применение миграций
	log.Println("Running database migrations...")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Migrations completed successfully")

	// Подключение к базе данных через pgxpool
	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	log.Println("Successfully connected to database")

	return nil
}

// initDependencies инициализирует все зависимости приложения (storage, services, handlers).
func (app *App) initDependencies() error {
	// Storage layer
	userStorage := storage.NewPostgresUserStorage(app.dbPool)
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool)
	walletStorage := storage.NewPostgresWalletStorage(app.dbPool)

	// Политики жизненного цикла заказа
	policy := services.OrderPolicy{
		StrictStatusFlow:  app.cfg.StrictStatusFlow,
		TerminalCancelled: app.cfg.TerminalCancelled,
		MonotonicLocation: app.cfg.MonotonicLocation,
	}

	// Service layer
	userService := services.NewUserService(userStorage, app.cfg.JWTSecret, app.cfg.TokenExpiration)
	orderService := services.NewOrderService(orderStorage, policy)

	verifier := payments.NewVerifier(app.cfg.GatewaySecret)
	if app.cfg.GatewaySecret == "" {
		log.Println("WARNING: GATEWAY_SECRET is not configured. Wallet top-ups will be rejected!")
	}
	walletService := services.NewWalletService(app.dbPool, userStorage, walletStorage, verifier)

	// Handler layer
	app.userHandler = handlers.NewUserHandler(userService)
	app.orderHandler = handlers.NewOrderHandler(orderService)
	app.walletHandler = handlers.NewWalletHandler(walletService)

	return nil
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PATCH, echo.DELETE},
	}))

	// Публичные маршруты (не требуют аутентификации)
	e.POST("/api/auth/register", app.userHandler.Register)
	e.POST("/api/auth/login", app.userHandler.Login)

	// Защищённые маршруты (требуют аутентификации)
	api := e.Group("/api")
	api.Use(auth.JWTMiddleware(app.cfg.JWTSecret))

	orders := api.Group("/orders")
	orders.POST("", app.orderHandler.Create, auth.RequireRole(models.RoleMCP))
	orders.GET("", app.orderHandler.List)
	orders.GET("/stats/overview", app.orderHandler.Stats)
	orders.GET("/:id", app.orderHandler.Get)
	orders.PATCH("/:id/status", app.orderHandler.UpdateStatus)
	orders.POST("/:id/assign", app.orderHandler.Assign, auth.RequireRole(models.RoleMCP))
	orders.GET("/:id/location", app.orderHandler.GetLocation)
	orders.PATCH("/:id/location", app.orderHandler.UpdateLocation,
		auth.RequireRole(models.RoleMCP, models.RolePickupPartner))

	wallet := api.Group("/wallet")
	wallet.GET("", app.walletHandler.GetBalance)
	wallet.POST("/topup/verify", app.walletHandler.VerifyTopUp)
	wallet.POST("/withdraw", app.walletHandler.Withdraw)
	wallet.GET("/transactions", app.walletHandler.GetTransactions)

	app.echo = e
}

// Start запускает приложение.
func (app *App) Start() error {
	log.Printf("Starting server on %s", app.cfg.RunAddress)
	if err := app.echo.Start(app.cfg.RunAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	log.Println("Server stopped")
	return nil
}

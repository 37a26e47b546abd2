package main // Entry point package

import (
    "context"
    "log" // Logging library

    "github.com/joho/godotenv"    // Loads a local .env file in development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/library-management/internal/config"
    "github.com/iliyamo/library-management/internal/database"
    "github.com/iliyamo/library-management/internal/handler"
    "github.com/iliyamo/library-management/internal/middleware"
    "github.com/iliyamo/library-management/internal/queue"
    "github.com/iliyamo/library-management/internal/repository"
    "github.com/iliyamo/library-management/internal/router"
    "github.com/iliyamo/library-management/internal/service"
)

func main() {
    // A missing .env file is fine; real deployments set env vars directly.
    _ = godotenv.Load()

    cfg := config.Load() // Load environment config

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer func() { _ = db.Close() }()

    // Redis is optional.  A nil client means the settings cache and the
    // rate limiter silently stand down.
    rdb := config.NewRedisClient()

    store := repository.NewStore(db)
    books := repository.NewBookRepo(db)
    borrows := repository.NewBorrowRepo(db)
    bookings := repository.NewBookingRepo(db)
    users := repository.NewUserRepo(db)
    settingsRepo := repository.NewSettingsRepo(db)

    settings := service.NewSettingsService(settingsRepo, rdb)
    notifier := service.NewQueueNotifier(cfg.RabbitURL)
    borrowSvc := service.NewBorrowService(store, borrows, books, bookings, users, settings, notifier)
    bookingSvc := service.NewBookingService(store, bookings, books, users, settings, notifier)
    sweeper := service.NewSweeper(borrows, bookings)

    // Consume notification events in the background so the log sink
    // keeps up even while the broker reconnects.
    go func() {
        if err := queue.StartNotificationConsumer(); err != nil {
            log.Printf("notification consumer stopped: %v", err)
        }
    }()

    // The in-process sweep ticker is optional; operators can also hit
    // POST /v1/admin/sweep directly.
    if cfg.SweepInterval > 0 {
        go sweeper.RunEvery(context.Background(), cfg.SweepInterval)
    }

    e := echo.New() // Create Echo instance
    if rl := config.LoadRateLimitConfig(); rl.Enabled && rdb != nil {
        e.Use(middleware.RateLimit(rl, rdb))
    }

    router.RegisterRoutes(e) // Register application routes
    router.RegisterBorrows(e, handler.NewBorrowHandler(borrowSvc))
    router.RegisterBookings(e, handler.NewBookingHandler(bookingSvc))
    router.RegisterAdmin(e, handler.NewAdminHandler(settings, sweeper))

    addr := ":" + cfg.Port                                // Address string with port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

    if err := e.Start(addr); err != nil { // Start HTTP server
        log.Fatal(err) // Log and exit if server fails
    }
}

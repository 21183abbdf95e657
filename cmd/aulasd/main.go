package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"

	"aulas-booking-client/config"
	"aulas-booking-client/internal/api"
	"aulas-booking-client/internal/connectivity"
	"aulas-booking-client/internal/db"
	"aulas-booking-client/internal/gateway"
	"aulas-booking-client/internal/notification"
	"aulas-booking-client/internal/session"
	"aulas-booking-client/internal/store"
	"aulas-booking-client/internal/workflow"
)

// logNotifier forwards wizard notices to the daemon log. The shell
// renders its own toasts from the HTTP responses; this keeps a trace of
// everything the user was told.
type logNotifier struct {
	logger *log.Logger
}

func (n *logNotifier) Toast(message string) { n.logger.Printf("toast: %s", message) }

func (n *logNotifier) Alert(header, message string) {
	n.logger.Printf("alert: %s: %s", header, message)
}

func (n *logNotifier) Success(message string) { n.logger.Printf("success: %s", message) }

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "aulasd ", log.LstdFlags)

	// Load .env overrides for local development, if present
	if err := godotenv.Load(); err == nil {
		logger.Println(".env file loaded")
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Push notices are optional for a local daemon; without VAPID keys
	// sync outcomes are only logged.
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured; push notices disabled")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Connectivity monitor: the shell reports transitions over the API
	// and the probe loop double-checks in the background. The initial
	// state comes from one synchronous probe, so a device booting
	// without a network queues the first confirm instead of erroring.
	monitor := connectivity.NewMonitor(&cfg.Connectivity, false)
	if monitor.ProbeOnce(ctx) {
		logger.Println("remote API reachable")
	} else {
		logger.Println("starting offline; bookings will queue until connectivity returns")
	}
	go monitor.Run(ctx)

	remote := gateway.NewClient(&cfg.API, monitor, appStore)

	sessions := session.NewManager(appStore, remote)
	if err := sessions.Restore(ctx); err != nil {
		logger.Printf("no stored session restored: %v", err)
	}

	notifier := &logNotifier{logger: logger}
	wizard := workflow.New(appStore, monitor, remote, sessions, notifier, workflow.ErrorClass{
		Conflict:      gateway.IsConflict,
		StoredOffline: gateway.IsStoredOffline,
		Unauthorized:  gateway.IsUnauthorized,
		Transport:     gateway.IsTransport,
	})

	// Sync worker pool: queued bookings are resubmitted here and the
	// outcome pushed to the stored subscriptions.
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, wizard.SyncPending)
	pool.Start(ctx)
	wizard.SetDispatcher(pool.Dispatch)
	wizard.Activate(ctx)
	defer wizard.Close()

	// Initialize router
	responses := cache.New(5*time.Minute, 10*time.Minute)
	handler := api.NewHandler(wizard, appStore, monitor, remote, sessions, webpushOptions, responses)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

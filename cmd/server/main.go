package main

import (
	"context"
	"errors"
	"log"
	netHttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"risehub/config"
	"risehub/db"
	"risehub/http"
	"risehub/http/handlers"
	"risehub/http/middleware"
	"risehub/logger"
	"risehub/services"
	"risehub/services/kafka"
)

func main() {
	// Determine project root by searching upward for go.mod
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal("Error getting current working directory:", err)
	}

	absProjectRoot := findProjectRoot(cwd)
	if absProjectRoot == "" {
		log.Fatalf("Could not locate project root (go.mod) from %s", cwd)
	}

	if err := os.Chdir(absProjectRoot); err != nil {
		log.Fatal("Error changing to project root:", err)
	}

	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	logger.SetDefault(logger.New(logger.Config{
		Level:        logger.ParseLevel(cfg.LogLevel),
		EnableCaller: true,
		JSON:         cfg.LogFormat == "json",
	}))
	defer logger.Default().Sync()
	logger.Info("Working directory set to project root: %s", absProjectRoot)

	// Initialize database
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.InitDB(initCtx, cfg.DBConnString()); err != nil {
		cancel()
		logger.Fatal("Error initializing database: %v", err)
	}
	cancel()
	store := db.NewPostgresStore(db.DB)

	// Outbound mail goes straight to the deliverer unless Kafka is configured,
	// in which case it is queued and delivered by the consumer below.
	var deliverer services.Mailer
	if cfg.SMTPConfigured() {
		deliverer = services.NewSMTPMailer(cfg)
	} else {
		logger.Warn("SMTP credentials not set, emails will be logged instead of sent")
		deliverer = services.NewConsoleMailer(logger.Default())
	}

	brokers := cfg.KafkaBrokerList()
	producer := kafka.NewProducer(brokers)
	var (
		mailer   services.Mailer = deliverer
		events   *services.EventBus
		consumer *kafka.Consumer
	)
	if producer != nil {
		kafka.EnsureTopics(brokers, []string{cfg.KafkaEmailTopic, cfg.KafkaEventsTopic})

		mailer = services.NewKafkaMailQueue(producer, cfg.KafkaEmailTopic, services.SystemClock)
		events = services.NewEventBus(producer, cfg.KafkaEventsTopic, services.SystemClock)

		consumer = kafka.NewConsumer(brokers, cfg.KafkaEmailTopic, cfg.KafkaGroupID)
		consumer.Handle(services.EventEmailSend, services.EmailSendHandler(deliverer))
		consumer.Start()
	} else {
		logger.Info("KAFKA_BROKERS not set, sending email inline")
	}

	notifier := services.NewNotifier(mailer, services.SiteInfo{Name: cfg.SiteName, SupportEmail: cfg.SupportEmail})

	accounts := services.NewAccountService(store, services.SystemClock)
	webinars := services.NewWebinarService(store, notifier, events, services.SystemClock)
	sessions, err := middleware.NewSessions([]byte(cfg.SessionKey), cfg.SessionSecure, accounts)
	if err != nil {
		logger.Fatal("Error configuring sessions: %v", err)
	}

	h := &handlers.Handler{
		Accounts:    accounts,
		Catalog:     services.NewCatalogService(store, webinars, services.SystemClock),
		Enrollments: services.NewEnrollmentService(store, notifier, events, services.SystemClock),
		Webinars:    webinars,
		Leads:       services.NewLeadService(store, notifier, events, services.SystemClock),
		Staff:       services.NewStaffService(store, services.SystemClock),
		Sessions:    sessions,
		Site:        services.SiteInfo{Name: cfg.SiteName, SupportEmail: cfg.SupportEmail},
	}

	router := http.NewRouter(h, http.Options{
		CORSOrigins: cfg.CORSOriginList(),
		CSRFSecret:  []byte(cfg.SessionKey),
		Secure:      cfg.SessionSecure,
	})
	srv := &netHttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, netHttp.ErrServerClosed) {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received, draining requests...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down HTTP server: %v", err)
	}

	// Pending emails and events are flushed before the producer closes
	notifier.Wait()
	events.Wait()
	if err := consumer.Stop(); err != nil {
		logger.Error("Error stopping Kafka consumer: %v", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("Error closing Kafka producer: %v", err)
	}
	if err := db.DB.Close(); err != nil {
		logger.Error("Error closing database: %v", err)
	}

	logger.Info("Server shutdown complete")
}

// findProjectRoot walks up from start and returns the first directory containing go.mod
func findProjectRoot(start string) string {
	dir := start
	for {
		// check for go.mod
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		// move up
		parent := filepath.Dir(dir)
		if parent == dir || strings.HasSuffix(dir, ":\\") || parent == "" {
			break
		}
		dir = parent
	}
	return ""
}

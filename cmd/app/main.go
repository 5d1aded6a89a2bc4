package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/akshith-07/fitflow-pro/docs"

	"github.com/akshith-07/fitflow-pro/internal/booking"
	"github.com/akshith-07/fitflow-pro/internal/class"
	"github.com/akshith-07/fitflow-pro/internal/clock"
	"github.com/akshith-07/fitflow-pro/internal/config"
	"github.com/akshith-07/fitflow-pro/internal/db"
	"github.com/akshith-07/fitflow-pro/internal/logger"
	"github.com/akshith-07/fitflow-pro/internal/membership"
	"github.com/akshith-07/fitflow-pro/internal/notification"
	"github.com/akshith-07/fitflow-pro/internal/payment"
	"github.com/akshith-07/fitflow-pro/internal/scheduler"
	"github.com/akshith-07/fitflow-pro/internal/server"
	"github.com/akshith-07/fitflow-pro/internal/user"
)

// @title FitFlow Pro API
// @version 1.0
// @description Membership and class booking API for multi-location gyms.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting FitFlow Pro application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	emailService := notification.NewEmailService(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emailService.Start(ctx)

	notifier := notification.NewManager(emailService, notification.NewLogSMSSender())
	logger.Info("Notification services initialized")

	clk := clock.New()

	userRepo := user.NewRepository(database)

	membershipRepo := membership.NewRepository(database)
	membershipSvc := membership.NewService(membershipRepo, userRepo, notifier, clk)

	classRepo := class.NewRepository(database)
	classSvc := class.NewService(classRepo, clk)

	bookingRepo := booking.NewRepository(database)
	bookingSvc := booking.NewService(bookingRepo, classRepo, userRepo, notifier, clk)

	gateway, err := payment.NewGateway(cfg.GatewayProvider)
	if err != nil {
		logger.Fatalf("Failed to initialize payment gateway: %v", err)
	}
	paymentRepo := payment.NewRepository(database)
	paymentSvc := payment.NewService(paymentRepo, membershipSvc, userRepo, notifier, gateway, clk, payment.Config{
		MaxRetries:     cfg.PaymentMaxRetries,
		RetryBackoff:   cfg.PaymentRetryBackoff,
		GatewayTimeout: cfg.GatewayTimeout,
		ReminderDays:   cfg.PaymentReminderDays,
	})

	runner := scheduler.New(clk,
		scheduler.Job{Name: "process-recurring-payments", AtHour: 2, Run: paymentSvc.ProcessDue},
		scheduler.Job{Name: "retry-due-payments", Every: time.Hour, Run: paymentSvc.RetryDue},
		scheduler.Job{Name: "expire-memberships", AtHour: 1, Run: membershipSvc.ExpireDue},
		scheduler.Job{Name: "unfreeze-memberships", AtHour: 6, Run: membershipSvc.AutoUnfreeze},
		scheduler.Job{Name: "check-expiring-memberships", AtHour: 8, Run: func(ctx context.Context) (int, error) {
			return membershipSvc.NotifyExpiring(ctx, cfg.ExpiryHorizonDays)
		}},
		scheduler.Job{Name: "send-payment-reminders", AtHour: 9, Run: paymentSvc.SendReminders},
		scheduler.Job{Name: "send-class-reminders", Every: time.Hour, Run: bookingSvc.SendClassReminders},
	)
	runner.Start(ctx)
	defer runner.Stop()

	srv := server.New(cfg, server.Deps{
		Users:       user.NewHandler(database, cfg.JWTSecret),
		Memberships: membership.NewHandler(membershipSvc),
		Classes:     class.NewHandler(classSvc),
		Bookings:    booking.NewHandler(bookingSvc),
		Payments:    payment.NewHandler(paymentSvc),
		Email:       emailService,
		Runner:      runner,
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

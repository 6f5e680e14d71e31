package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/altivest/portal-service/internal/app"
	"github.com/altivest/portal-service/internal/otp"
	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/services/blob"
	"github.com/altivest/portal-service/internal/services/events"
	"github.com/altivest/portal-service/internal/services/hash"
	"github.com/altivest/portal-service/internal/services/jwt"
	"github.com/altivest/portal-service/internal/services/mailer"
	"github.com/altivest/portal-service/internal/services/recaptcha"
	"github.com/altivest/portal-service/internal/services/sentry"
	"github.com/altivest/portal-service/internal/services/sms"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger.Info("GOMAXPROCS", "cpu", runtime.GOMAXPROCS(0))

	// 1. Initialize Database
	dbService := docdb.New()

	// 2. Initialize Services
	hashService := hash.NewHashService()
	jwtService := jwt.NewTokenService()
	sentryService := sentry.NewSentryService()
	mailerService := mailer.NewMailerService()
	smsService := sms.NewSMSService()
	captchaService := recaptcha.NewRecaptchaService()
	otpStore := otp.NewStore()

	blobService, err := blob.NewBlobService()
	if err != nil {
		return fmt.Errorf("blob storage: %w", err)
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := blobService.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("blob bucket: %w", err)
		}
	}

	// The stream publisher is optional; the portal runs without the admin
	// event feed when redis is unreachable.
	var publisher events.Publisher
	if streamPublisher, err := events.NewStreamPublisher(); err != nil {
		logger.Warn("event stream unavailable, continuing without it", "error", err)
	} else {
		publisher = streamPublisher
		defer streamPublisher.Close()
	}

	// 3. Initialize App
	app := app.NewApp(
		dbService,
		jwtService,
		hashService,
		sentryService,
		mailerService,
		smsService,
		captchaService,
		blobService,
		publisher,
		otpStore,
	)

	// 4. Configure Server
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080 // Fallback default
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// 5. Graceful Shutdown Logic
	done := make(chan bool, 1)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down gracefully, press Ctrl+C again to force")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server forced to shutdown", "error", err)
		}
		done <- true
	}()

	// 6. Start Server
	logger.Info("Starting server", "port", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	<-done
	logger.Info("Graceful shutdown complete")

	if err := dbService.Close(); err != nil {
		logger.Error("closing database", "error", err)
	}
	sentryService.Close()
	return nil
}

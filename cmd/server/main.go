// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unclebandit/mailtrack-backend/internal/config"
	"github.com/unclebandit/mailtrack-backend/internal/controller"
	"github.com/unclebandit/mailtrack-backend/internal/db"
	"github.com/unclebandit/mailtrack-backend/internal/handler"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/metrics"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/notify"
	"github.com/unclebandit/mailtrack-backend/internal/queue"
	"github.com/unclebandit/mailtrack-backend/internal/repository"
	"github.com/unclebandit/mailtrack-backend/internal/service"
	"github.com/unclebandit/mailtrack-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	lggr, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer lggr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lggr); err != nil {
		lggr.Fatalw("Server stopped", "err", err)
	}
}

func run(ctx context.Context, cfg *config.Config, lggr logger.Logger) error {
	conn, err := db.Open(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}
	settingRepo := &repository.SettingRepository{DB: conn}
	settingService, err := seedSettings(ctx, settingRepo)
	if err != nil {
		return err
	}

	photos, photoDir, err := openPhotoStore(ctx, cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	q := queue.NewInMemoryQueue()

	customerRepo := &repository.CustomerRepository{DB: conn}
	mailRepo := &repository.MailRepository{DB: conn}
	staffRepo := &repository.StaffRepository{DB: conn}
	sessionRepo := &repository.SessionRepository{DB: conn}

	notifier := notify.NewWebhookNotifier(settingRepo, lggr.Named("notify"))
	if err := q.Subscribe(model.TopicMailRegistered, notifier.Handle); err != nil {
		return err
	}
	if cfg.AMQPURL != "" {
		pub, err := queue.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer pub.Close()
		if err := q.Subscribe(model.TopicMailRegistered, pub.Forward(model.TopicMailRegistered)); err != nil {
			return err
		}
		lggr.Infow("Forwarding mail events to broker", "exchange", cfg.AMQPExchange)
	}

	customerService := &service.CustomerService{
		CustomerRepo: customerRepo,
		MailRepo:     mailRepo,
		Photos:       photos,
		Metrics:      m,
		Log:          lggr.Named("customers"),
		Location:     cfg.Location(),
	}
	mailService := &service.MailService{
		MailRepo:     mailRepo,
		CustomerRepo: customerRepo,
		Photos:       photos,
		Queue:        q,
		Metrics:      m,
		Log:          lggr.Named("mails"),
	}
	authService := &service.AuthService{
		StaffRepo:   staffRepo,
		SessionRepo: sessionRepo,
		TTL:         cfg.SessionTTL,
		AllowSignup: cfg.AllowSignup,
	}

	httpLog := lggr.Named("http")
	router := handler.NewRouter(handler.Deps{
		Customers: &controller.CustomerController{CustomerService: customerService, Log: httpLog},
		Mails:     &controller.MailController{MailService: mailService, Log: httpLog, MaxUploadBytes: cfg.MaxUploadMB << 20},
		Lookup: &controller.LookupController{
			LookupService: &service.LookupService{CustomerRepo: customerRepo, MailRepo: mailRepo, Location: cfg.Location()},
			Log:           httpLog,
		},
		Dashboard: &controller.DashboardController{
			DashboardService: &service.DashboardService{MailRepo: mailRepo, CustomerRepo: customerRepo, Location: cfg.Location()},
			Log:              httpLog,
		},
		Settings:      &controller.SettingController{SettingService: settingService, Log: httpLog},
		Auth:          &controller.AuthController{AuthService: authService, Log: httpLog, SecureCookie: cfg.CookieSecure},
		Authenticator: authService,
		Metrics:       m,
		Log:           httpLog,
		CORSOrigins:   cfg.CORSOrigins,
		PhotoDir:      photoDir,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		lggr.Infow("Server running", "addr", cfg.HTTPAddr, "timezone", cfg.Timezone, "storage", cfg.Storage.Driver)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	lggr.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedSettings creates the default settings rows so a fresh database can be
// configured from the settings API without running mailctl first.
func seedSettings(ctx context.Context, repo repository.SettingRepositoryInterface) (*service.SettingService, error) {
	svc := &service.SettingService{SettingRepo: repo}
	if err := svc.Seed(ctx); err != nil {
		return nil, fmt.Errorf("seed default settings: %w", err)
	}
	return svc, nil
}

// openPhotoStore returns the configured store and, for the fs driver, the
// directory the router should serve.
func openPhotoStore(ctx context.Context, cfg *config.Config) (storage.PhotoStore, string, error) {
	sc := cfg.Storage
	if sc.Driver == "s3" {
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:      sc.Endpoint,
			AccessKey:     sc.AccessKey,
			SecretKey:     sc.SecretKey,
			UseSSL:        sc.UseSSL,
			Region:        sc.Region,
			Bucket:        sc.Bucket,
			PublicBaseURL: sc.PublicBaseURL,
		})
		return s, "", err
	}
	s, err := storage.NewFSStore(sc.Dir, sc.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	return s, s.Root(), nil
}

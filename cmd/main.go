package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/senyabanana/repair-quotes/internal/auth"
	"github.com/senyabanana/repair-quotes/internal/clock"
	"github.com/senyabanana/repair-quotes/internal/db"
	"github.com/senyabanana/repair-quotes/internal/handlers"
	"github.com/senyabanana/repair-quotes/internal/models"
	"github.com/senyabanana/repair-quotes/internal/notify"
	"github.com/senyabanana/repair-quotes/internal/repository"
	"github.com/senyabanana/repair-quotes/internal/router"
	"github.com/senyabanana/repair-quotes/internal/router/config"
	"github.com/senyabanana/repair-quotes/internal/scheduling"
	"github.com/senyabanana/repair-quotes/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"
)

type stores struct {
	requests     repository.RequestRepository
	appointments repository.AppointmentRepository
	workshops    repository.WorkshopRepository
	close        func()
}

func main() {
	configPath := pflag.String("config-path", ".", "directory containing app.env")
	runMigrations := pflag.Bool("migrate", true, "apply database migrations on startup")
	issueToken := pflag.String("issue-token", "", "print a token for role:user[:workshop] and exit")
	tokenTTL := pflag.Duration("token-ttl", 24*time.Hour, "lifetime of a token printed by --issue-token")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)
	authn := auth.NewAuthenticator(cfg.JWTSecret)

	if *issueToken != "" {
		token, err := issue(authn, *issueToken, *tokenTTL)
		if err != nil {
			log.Fatalf("cannot issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, *runMigrations)
	if err != nil {
		log.Fatalf("error initializing storage: %v", err)
	}
	defer st.close()

	if cfg.WorkshopsSeedPath != "" {
		workshops, err := repository.LoadWorkshops(cfg.WorkshopsSeedPath)
		if err != nil {
			log.Fatalf("cannot load workshops: %v", err)
		}
		if err := repository.SeedWorkshops(ctx, st.workshops, workshops); err != nil {
			log.Fatalf("cannot seed workshops: %v", err)
		}
		logger.Printf("seeded %d workshops from %s", len(workshops), cfg.WorkshopsSeedPath)
	}

	var weights map[models.ServiceCategory]float64
	if cfg.DurationTablePath != "" {
		if weights, err = scheduling.LoadWeights(cfg.DurationTablePath); err != nil {
			log.Fatalf("cannot load duration table: %v", err)
		}
	}

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL, cfg.NotifyTimeout)
	}

	clk := clock.Real()
	competitionService := services.NewCompetitionService(st.requests, st.workshops, clk, logger, cfg.RequestTTL)
	schedulingService := services.NewSchedulingService(st.requests, st.appointments, st.workshops,
		scheduling.NewEstimator(weights), notifier, clk, logger, services.SchedulingConfig{
			Location:      cfg.Location(),
			SlotStep:      cfg.SlotStep(),
			NotifyTimeout: cfg.NotifyTimeout,
		})

	requestHandler := handlers.NewRequestHandler(competitionService, logger, cfg.RequestTimeout)
	bidHandler := handlers.NewBidHandler(competitionService, logger, cfg.RequestTimeout)
	scheduleHandler := handlers.NewScheduleHandler(schedulingService, logger, cfg.RequestTimeout)

	routes := router.InitRoutes(authn, requestHandler, bidHandler, scheduleHandler)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("server is listening on %s (storage: %s)...", cfg.ServerAddress, cfg.StorageDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func openStores(ctx context.Context, cfg config.Config, runMigrations bool) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		mem := repository.NewMemoryStore()
		return &stores{requests: mem, appointments: mem, workshops: mem, close: func() {}}, nil
	}

	if runMigrations {
		runDBMigration(cfg.MigrationURL, cfg.PostgresConn)
	}
	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &stores{
		requests:     repository.NewPostgresRequestRepository(dbPool),
		appointments: repository.NewPostgresAppointmentRepository(dbPool),
		workshops:    repository.NewPostgresWorkshopRepository(dbPool),
		close:        dbPool.Close,
	}, nil
}

// issue разбирает спецификацию вида customer:u-1 или workshop:u-2:ws-1.
func issue(authn *auth.Authenticator, spec string, ttl time.Duration) (string, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", fmt.Errorf("expected role:user[:workshop], got %q", spec)
	}
	identity := auth.Identity{Role: auth.Role(parts[0]), UserID: parts[1]}
	if len(parts) == 3 {
		identity.WorkshopID = parts[2]
	}
	if !identity.IsCustomer() && !identity.IsWorkshop() {
		return "", fmt.Errorf("role must be %s or %s with a workshop id", auth.RoleCustomer, auth.RoleWorkshop)
	}
	return authn.Issue(identity, time.Now(), ttl)
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}

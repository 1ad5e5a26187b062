package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shiva/campusq/config"
	"github.com/shiva/campusq/internal/handler"
	"github.com/shiva/campusq/internal/hub"
	"github.com/shiva/campusq/internal/middleware"
	"github.com/shiva/campusq/internal/repository"
	"github.com/shiva/campusq/internal/service"
	"github.com/shiva/campusq/pkg/cache"
	"github.com/shiva/campusq/pkg/db"
	"github.com/shiva/campusq/pkg/telemetry"
)

func main() {
	// ── Load configuration ──────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	loc, err := cfg.Campus.Location()
	if err != nil {
		log.Fatalf("failed to load timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := telemetry.Setup(ctx, cfg.Telemetry)
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(tctx)
	}()

	// ── Optional PostgreSQL audit trail ─────────────────
	var (
		pgPool   *pgxpool.Pool
		archiver service.OrderArchiver = service.NopOrderArchiver{}
	)
	if cfg.Postgres.Enabled {
		pgPool, err = db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			log.Fatalf("failed to connect to PostgreSQL: %v", err)
		}
		defer pgPool.Close()

		archive := repository.NewArchiveRepository(pgPool)
		if err := archive.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare order_events: %v", err)
		}
		archiver = archive
		log.Println("✓ PostgreSQL connected (order audit trail)")
	}

	// ── Optional Redis snapshot mirror ──────────────────
	var (
		redisClient *redis.Client
		snapshots   *repository.SnapshotRepository
		publisher   service.SnapshotPublisher = service.NopSnapshotPublisher{}
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		snapshots = repository.NewSnapshotRepository(redisClient, cfg.Redis.SnapshotTTL)
		publisher = snapshots
		log.Println("✓ Redis connected (congestion snapshot)")
	}

	// ── Initialize layers ───────────────────────────────
	seed := time.Now().UnixNano()
	predictor := service.NewPredictor(loc, time.Now, rand.New(rand.NewSource(seed)))

	facilityRepo := repository.NewFacilityRepository(repository.SeedFacilities(), rand.New(rand.NewSource(seed+1)))
	waitingRepo := repository.NewWaitingRepository(cfg.Campus.HistoryLimit)
	orderRepo := repository.NewOrderRepository()

	facilitySvc := service.NewFacilityService(facilityRepo, predictor)
	waitingSvc := service.NewWaitingService(facilitySvc, waitingRepo, predictor)
	orderSvc := service.NewOrderService(orderRepo, facilityRepo, archiver, predictor, service.OrderConfig{
		QRTTL:           cfg.Campus.QRTTL,
		GeofenceRadiusM: cfg.Campus.GeofenceRadiusM,
	})

	pushHub := hub.New()
	scheduler := service.NewScheduler(service.SchedulerConfig{
		CongestionInterval: cfg.Campus.CongestionTick,
		SweepInterval:      cfg.Campus.QRSweepInterval,
	}, facilityRepo, waitingSvc, orderSvc, publisher, pushHub, predictor)

	// ── Setup router ────────────────────────────────────
	router := mux.NewRouter()

	// Health check endpoint.
	router.HandleFunc("/health", healthHandler(pgPool, redisClient, snapshots)).Methods(http.MethodGet)

	handler.API{
		Facilities: handler.NewFacilityHandler(facilitySvc),
		Waiting:    handler.NewWaitingHandler(waitingSvc),
		Orders:     handler.NewOrderHandler(orderSvc),
		WS:         handler.NewWSHandler(pushHub),
	}.Register(router)

	h := middleware.CORS(middleware.RequestLogger(middleware.Recoverer(router)))
	h = otelhttp.NewHandler(h, cfg.Telemetry.ServiceName)

	// ── Start background ticks ──────────────────────────
	go scheduler.Run(ctx)

	// ── Start HTTP server ───────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("🚀 Server listening on %s (timezone %s)", cfg.Server.ServerAddr(), loc)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────
	<-ctx.Done()
	log.Println("⏳ Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("✅ Server gracefully stopped")
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// healthHandler reports the optional backends. Disabled backends are listed
// as "disabled"; with neither enabled the service is purely in-memory and always "ok".
func healthHandler(pgPool *pgxpool.Pool, redisClient *redis.Client, snapshots *repository.SnapshotRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:   "ok",
			Services: map[string]string{"memory": "healthy"},
		}

		var ok bool
		if resp.Services["postgres"], ok = db.Status(r.Context(), pgPool); !ok {
			resp.Status = "degraded"
		}
		if resp.Services["redis"], ok = cache.Status(r.Context(), redisClient); !ok {
			resp.Status = "degraded"
		}

		if snapshots != nil {
			if snap, err := snapshots.Latest(r.Context()); err == nil && snap != nil {
				resp.Services["snapshot"] = "published " + snap.Timestamp.Format(time.RFC3339)
			} else if err == nil {
				resp.Services["snapshot"] = "pending"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

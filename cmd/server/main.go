package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/gta-invest/propertymap/internal/business/catalog"
	"github.com/gta-invest/propertymap/internal/business/collection"
	"github.com/gta-invest/propertymap/internal/business/portfolio"
	"github.com/gta-invest/propertymap/internal/business/preferences"
	"github.com/gta-invest/propertymap/internal/platform/config"
	firestoreclient "github.com/gta-invest/propertymap/internal/platform/firestore"
	"github.com/gta-invest/propertymap/internal/platform/fixture"
	apirouter "github.com/gta-invest/propertymap/internal/platform/http"
	"github.com/gta-invest/propertymap/internal/platform/logger"
	redisclient "github.com/gta-invest/propertymap/internal/platform/redis"
	"github.com/gta-invest/propertymap/internal/platform/validator"
	"github.com/gta-invest/propertymap/internal/repository"
)

type catalogStore interface {
	catalog.PropertyStore
	catalog.ScoreStore
	catalog.SnapshotStore
}

// firestoreCatalog joins the three Firestore repositories behind one value.
type firestoreCatalog struct {
	*repository.PropertyRepository
	*repository.LocationScoreRepository
	*repository.SnapshotRepository
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	gin.SetMode(cfg.GinMode)
	appLog := logger.New(cfg.AppEnv)

	var fsClient *firestore.Client
	if cfg.NeedsFirestore() {
		client, credsSource, err := firestoreclient.New(ctx, cfg)
		if err != nil {
			log.Fatalf("firestore init: %v", err)
		}
		defer client.Close()
		if err := firestoreclient.Ping(ctx, client); err != nil {
			log.Fatalf("firestore ping: %v", err)
		}
		appLog.Info("connected to Firestore", "project", cfg.FirebaseProjectID, "credentials", credsSource)
		fsClient = client
	}

	var store catalogStore
	switch cfg.DataSource {
	case config.DataSourceFirestore:
		store = firestoreCatalog{
			PropertyRepository:      repository.NewPropertyRepository(fsClient),
			LocationScoreRepository: repository.NewLocationScoreRepository(fsClient),
			SnapshotRepository:      repository.NewSnapshotRepository(fsClient),
		}
	default:
		store = repository.NewMemoryCatalog(fixture.Properties(), fixture.LocationScores())
	}

	var state collection.StateStore
	switch cfg.StateBackend {
	case config.StateBackendFirestore:
		state = repository.NewFirestoreStateStore(fsClient, cfg.StateNamespace)
	case config.StateBackendRedis:
		rdb, err := redisclient.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis init: %v", err)
		}
		defer rdb.Close()
		state = repository.NewRedisStateStore(rdb, cfg.StateNamespace)
	default:
		state = repository.NewMemoryStateStore()
	}

	v := validator.New()
	router := apirouter.NewRouter(apirouter.Deps{
		Catalog:     catalog.NewService(store, store, store, v),
		Favorites:   collection.NewFavorites(state),
		Portfolio:   collection.NewPortfolio(state),
		History:     portfolio.NewHistory(state),
		Preferences: preferences.NewService(state, v),
		Validator:   v,
		Log:         appLog,
	}, apirouter.Options{
		Origins:        cfg.Origins(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	appLog.Info("server listening", "port", cfg.Port, "data_source", cfg.DataSource, "state_backend", cfg.StateBackend)

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server shutdown error", "error", err)
	}
	appLog.Info("server exited")
}

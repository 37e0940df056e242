package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkm-lab/analysis-engine/internal/queue"
	mid "github.com/mkm-lab/analysis-engine/internal/server/middleware"
	"github.com/mkm-lab/analysis-engine/internal/util"
	"github.com/mkm-lab/analysis-engine/pkg/ai"
	"github.com/mkm-lab/analysis-engine/pkg/ai/fallback"
	oai "github.com/mkm-lab/analysis-engine/pkg/ai/ollama"
	gai "github.com/mkm-lab/analysis-engine/pkg/ai/openai"
	"github.com/mkm-lab/analysis-engine/pkg/engine"
	"github.com/mkm-lab/analysis-engine/pkg/logger"
	pgstore "github.com/mkm-lab/analysis-engine/pkg/store/pgx"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// newEmbeddingClient selects the embedding backend from AI_ADAPTER.
// Without configuration the deterministic fallback backend is used so
// the service runs with no external model dependency.
func newEmbeddingClient() ai.EmbeddingClient {
	dimensions := int(util.GetEnvNumeric("AI_EMBED_DIM", 384))

	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		client, err := oai.NewClient(oai.NewClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			BaseURL:        util.GetEnv("AI_EMBED_URL"),
			ApiKey:         util.GetEnv("AI_EMBED_KEY"),

			Dimensions:            dimensions,
			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	case "openai":
		return gai.NewClient(gai.NewClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			BaseURL:        util.GetEnv("AI_EMBED_URL"),
			APIKey:         util.GetEnv("AI_EMBED_KEY"),

			Dimensions:            dimensions,
			MaxConcurrentRequests: int(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
	default:
		return fallback.NewClient(fallback.NewClientParams{Dimensions: dimensions})
	}
}

// Init starts the HTTP API. It owns the database pool, the queue
// channel and the engine's in-memory state; the worker process does the
// actual ingestion.
func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := pgstore.Migrate(databaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Fatal("Failed to parse database config", "err", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	conn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	eng := engine.New(engine.NewParams{
		Embedder:   newEmbeddingClient(),
		Store:      pgstore.NewStorageWithConnection(conn),
		Dimensions: int(util.GetEnvNumeric("AI_EMBED_DIM", 384)),
	})
	if err := eng.Reload(ctx); err != nil {
		logger.Fatal("Failed to load engine state", "err", err)
	}

	// the worker writes the corpus; pick up its changes periodically
	refreshEvery := time.Duration(util.GetEnvNumeric("ENGINE_REFRESH_SEC", 60)) * time.Second
	go func() {
		t := time.NewTicker(refreshEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := eng.Reload(ctx); err != nil {
					logger.Error("Failed to refresh engine state", "err", err)
				}
			}
		}
	}()

	masterAPIKey := util.GetEnv("MASTER_API_KEY")

	e.Use(mid.AppContextMiddleware(eng, ch, masterAPIKey))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/lectern-dev/lectern/internal/ai"
	"github.com/lectern-dev/lectern/internal/chunker"
	"github.com/lectern-dev/lectern/internal/config"
	"github.com/lectern-dev/lectern/internal/contentstore"
	"github.com/lectern-dev/lectern/internal/db"
	"github.com/lectern-dev/lectern/internal/embedcache"
	"github.com/lectern-dev/lectern/internal/handler"
	"github.com/lectern-dev/lectern/internal/job"
	"github.com/lectern-dev/lectern/internal/middleware"
	"github.com/lectern-dev/lectern/internal/repo"
	"github.com/lectern-dev/lectern/internal/schedule"
	"github.com/lectern-dev/lectern/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "lectern",
		Short: "lectern adaptive textbook server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run lectern server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildGeneratorChain(entries []config.ProviderConfig) (*ai.GeneratorChain, error) {
	items := make([]ai.GeneratorEntry, 0, len(entries))
	for _, entry := range entries {
		provider, err := ai.NewProvider(entry.Provider, entry.Data)
		if err != nil {
			return nil, fmt.Errorf("init provider %s: %w", entry.Provider, err)
		}
		items = append(items, ai.GeneratorEntry{
			Name:      entry.Provider,
			Generator: ai.NewGenerator(provider, entry.Model),
		})
	}
	return ai.NewGeneratorChain(items), nil
}

func buildEmbedder(entries []config.ProviderConfig) (ai.IEmbedder, error) {
	items := make([]ai.EmbedderEntry, 0, len(entries))
	for _, entry := range entries {
		provider, err := ai.NewEmbedProvider(entry.Provider, entry.Data)
		if err != nil {
			return nil, fmt.Errorf("init embed provider %s: %w", entry.Provider, err)
		}
		items = append(items, ai.EmbedderEntry{
			Name:     entry.Model,
			Embedder: ai.NewEmbedder(provider, entry.Model),
		})
	}
	return ai.NewGroupEmbedder(items), nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("content_store", cfg.ContentStore.Type),
	)

	userRepo := repo.NewUserRepo(conn)
	personalizationRepo := repo.NewPersonalizationCacheRepo(conn)
	translationRepo := repo.NewTranslationCacheRepo(conn)
	usageRepo := repo.NewUsageLogRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)
	embeddingCacheRepo := repo.NewEmbeddingCacheRepo(conn)

	store, err := contentstore.New(cfg.ContentStore.Type, cfg.ContentStore.Data)
	if err != nil {
		return fmt.Errorf("init content store: %w", err)
	}

	personalizerChain, err := buildGeneratorChain(cfg.AI.Personalizers)
	if err != nil {
		return err
	}
	translatorChain, err := buildGeneratorChain(cfg.AI.Translators)
	if err != nil {
		return err
	}
	embedder, err := buildEmbedder(cfg.AI.Embedders)
	if err != nil {
		return err
	}
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, embeddingCacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(embedder, cfg.EmbedCache.LRUSize, time.Duration(cfg.EmbedCache.LRUTTLMinutes)*time.Minute)

	manager := ai.NewManager(personalizerChain, translatorChain, embedder, ai.ManagerConfig{
		TimeoutSeconds: cfg.AI.TimeoutSeconds,
		MaxInputChars:  cfg.AI.MaxInputChars,
	})

	splitter, err := chunker.NewSplitter(cfg.Chunk.MaxSize, cfg.Chunk.Overlap)
	if err != nil {
		return fmt.Errorf("init splitter: %w", err)
	}

	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	personalizeService := service.NewPersonalizeService(personalizationRepo, store, manager, usageRepo)
	translateService := service.NewTranslateService(translationRepo, store, manager, usageRepo)
	ingestService := service.NewIngestService(store, chunkRepo, splitter, manager)

	deps := handler.RouterDeps{
		Auth:           handler.NewAuthHandler(authService),
		Chapters:       handler.NewChapterHandler(store),
		Personalize:    handler.NewPersonalizeHandler(personalizeService),
		Translate:      handler.NewTranslateHandler(translateService),
		RAG:            handler.NewRAGHandler(ingestService),
		Usage:          handler.NewUsageHandler(usageRepo),
		JWTSecret:      []byte(cfg.JWTSecret),
		GenerateWindow: time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewReindexJob(ingestService), cfg.Jobs.ReindexSpec); err != nil {
		return err
	}
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(embeddingCacheRepo, cfg.EmbedCache.DBTTLDays), cfg.Jobs.EmbedCacheCleanupSpec); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

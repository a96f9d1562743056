package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aivory/fitstudio/api"
	"github.com/aivory/fitstudio/api/core"
	"github.com/aivory/fitstudio/cache"
	"github.com/aivory/fitstudio/config"
	"github.com/aivory/fitstudio/database"
	"github.com/aivory/fitstudio/database/repo/history"
	"github.com/aivory/fitstudio/database/repo/images"
	"github.com/aivory/fitstudio/database/repo/transactions"
	"github.com/aivory/fitstudio/database/repo/users"
	"github.com/aivory/fitstudio/internal/services/account"
	"github.com/aivory/fitstudio/internal/services/credits"
	"github.com/aivory/fitstudio/internal/services/generation"
	"github.com/aivory/fitstudio/internal/services/media"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 数据库
	dbProvider, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 缓存
	cacheProvider, err := cache.New(cache.Config{
		Type:     cfg.CacheType,
		Address:  cfg.CacheRedisAddr,
		Password: cfg.CacheRedisPassword,
		DB:       cfg.CacheRedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	log.Printf("Cache provider initialized: %s", cacheProvider.Name())
	cacheHelper := cache.NewHelper(cacheProvider, cfg.UserCacheTTL())

	// JWT
	if err := api.TokenInit(cfg.JwtSecret, cfg.JwtExpiresIn, cfg.JwtRefreshExpiresIn); err != nil {
		log.Fatalf("Failed to initialize JWT: %s", err)
	}

	// 仓库与服务
	db := dbProvider.DB()
	usersRepo := users.NewRepository(db)
	imagesRepo := images.NewRepository(db)
	historyRepo := history.NewRepository(db)
	txnsRepo := transactions.NewRepository(db)

	mediaSvc := media.NewService(imagesRepo, historyRepo)
	creditsSvc := credits.NewService(dbProvider, usersRepo, txnsRepo, cacheHelper)
	accountSvc := account.NewService(dbProvider, usersRepo, cacheHelper, cfg.CreditsSignupBonus)

	editor := generation.NewClient(generation.ClientConfig{
		EndpointURL:    cfg.GenEndpointURL,
		APIKey:         cfg.GenAPIKey,
		AttemptTimeout: cfg.GenAttemptTimeout,
		MaxAttempts:    cfg.GenMaxAttempts,
		RPS:            cfg.GenClientRPS,
		Burst:          cfg.GenClientBurst,
	})
	generationSvc := generation.NewService(editor, mediaSvc, creditsSvc, cfg.GenMaxImageMB<<20)

	deps := &core.ServerDependencies{
		Config:        cfg,
		DBProvider:    dbProvider,
		CacheProvider: cacheProvider,
		AccountSvc:    accountSvc,
		CreditsSvc:    creditsSvc,
		MediaSvc:      mediaSvc,
		GenerationSvc: generationSvc,
	}

	// 启动gin
	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := cacheProvider.Close(); err != nil {
		log.Printf("Error closing cache provider: %v", err)
	}
	if err := dbProvider.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server exited successfully")
}

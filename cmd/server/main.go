package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ArishaRashid/WhoYap/internal/app"
	"github.com/ArishaRashid/WhoYap/internal/config"
	"github.com/ArishaRashid/WhoYap/internal/handler"
	"github.com/ArishaRashid/WhoYap/internal/redisx"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"github.com/ArishaRashid/WhoYap/internal/server"
	"github.com/ArishaRashid/WhoYap/internal/service"
	"github.com/ArishaRashid/WhoYap/internal/telegram_bot"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Database connection and migrations
	db, err := app.OpenDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	chatRepo := repository.NewChatRepository(db, logger)
	sessionRepo := repository.NewSessionRepository(db, logger)

	// Model providers for embeddings and free-form chat
	providers, err := app.NewProviders(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize model providers", zap.Error(err))
	}
	defer providers.Close()

	var chatEmbedder service.ChatEmbedder
	backfiller := app.NewBackfiller(cfg, chatRepo, providers.Embedder(cfg), logger)
	if backfiller != nil {
		chatEmbedder = backfiller
		if cfg.Embedding.Backfill {
			go backfiller.Run(ctx)
		}
	} else {
		logger.Info("Embeddings are disabled")
	}

	var chatter handler.Chatter
	llmClient, err := providers.LLM(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM client", zap.Error(err))
	}
	if llmClient != nil {
		chatter = llmClient
	}

	uploads, err := app.NewUploadStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize upload store", zap.Error(err))
	}

	// Round tokens and the optional replay guard
	if cfg.Quiz.RoundSecret == "" {
		logger.Warn("quiz.round_secret is empty; round tokens will not survive a restart")
	}
	signer, err := service.NewRoundSigner(cfg.Quiz.RoundSecret, cfg.Quiz.RoundTTL)
	if err != nil {
		logger.Fatal("Failed to initialize round signer", zap.Error(err))
	}

	var guard service.RoundGuard
	if cfg.Redis.Addr != "" {
		rc := redisx.NewClient(redisx.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		guard = redisx.NewGuard(rc)
		logger.Info("Round replay guard enabled", zap.String("addr", cfg.Redis.Addr))
	}

	seed := cfg.Quiz.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	importer := service.NewImporter(chatRepo, chatEmbedder, logger)
	sessions := service.NewSessionManager(chatRepo, sessionRepo, logger)
	quiz := service.NewQuizService(chatRepo, sessionRepo, signer, guard, rand.NewSource(seed),
		service.QuizConfig{RequireRoundToken: cfg.Quiz.RequireRoundToken}, logger)

	// Telegram bot for join request decisions
	var notifier handler.JoinNotifier
	bot, err := telegram_bot.NewBot(telegram_bot.Config{
		Enabled:    cfg.Telegram.Enabled,
		Token:      cfg.Telegram.BotToken,
		HostChatID: cfg.Telegram.HostChatID,
	}, sessions, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram bot, continuing without it", zap.Error(err))
		bot = nil
	}
	if bot != nil {
		notifier = bot
		go func() {
			if err := bot.Start(ctx); err != nil {
				logger.Error("Telegram bot failed", zap.Error(err))
			}
		}()
	}

	srv := server.NewServer(server.Handlers{
		Chats:    handler.NewChatHandler(importer, uploads, chatRepo, chatEmbedder, cfg.Uploads.MaxBytes, logger),
		Sessions: handler.NewSessionHandler(sessions, notifier, logger),
		Quiz:     handler.NewQuizHandler(quiz, logger),
		System:   handler.NewSystemHandler(db, chatter, logger),
	}, logger)

	if err := srv.Run(ctx, ":"+cfg.Server.Port); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
	logger.Info("Application stopped.")
}

// Package app builds the collaborators both binaries share from a loaded
// config.
package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/ArishaRashid/WhoYap/internal/config"
	"github.com/ArishaRashid/WhoYap/internal/embedding"
	"github.com/ArishaRashid/WhoYap/internal/gemini"
	"github.com/ArishaRashid/WhoYap/internal/llm"
	"github.com/ArishaRashid/WhoYap/internal/ollama"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"github.com/ArishaRashid/WhoYap/internal/upload"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// OpenDatabase connects to the configured database and applies migrations.
func OpenDatabase(cfg *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := repository.Open(cfg.Database.Type, cfg.Database.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := repository.MigrateDB(db, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Providers holds the model clients created from config. Either may be nil.
type Providers struct {
	Ollama *ollama.Client
	Gemini *gemini.Client
}

// NewProviders creates only the clients some part of cfg refers to.
func NewProviders(cfg *config.Config, logger *zap.Logger) (*Providers, error) {
	p := &Providers{}
	if cfg.Embedding.Provider == "ollama" || slices.Contains(cfg.LLM.Providers, "ollama") {
		p.Ollama = ollama.NewClient(ollama.Config{
			Host:           cfg.Ollama.Host,
			EmbeddingModel: cfg.Ollama.EmbeddingModel,
			ChatModel:      cfg.Ollama.ChatModel,
			Timeout:        cfg.Ollama.Timeout,
		})
	}
	if cfg.Embedding.Provider == "gemini" || slices.Contains(cfg.LLM.Providers, "gemini") {
		g, err := gemini.NewClient(gemini.Config{
			APIKey:         cfg.Gemini.APIKey,
			EmbeddingModel: cfg.Gemini.EmbeddingModel,
			ChatModel:      cfg.Gemini.ChatModel,
			MaxRetries:     cfg.Gemini.MaxRetries,
			RetryDelay:     cfg.Gemini.RetryDelay,
		}, logger)
		if err != nil {
			return nil, err
		}
		p.Gemini = g
	}
	return p, nil
}

// Close releases the Gemini client if one was created.
func (p *Providers) Close() error {
	if p.Gemini != nil {
		return p.Gemini.Close()
	}
	return nil
}

// Embedder returns the configured embedder, or nil when embeddings are off.
func (p *Providers) Embedder(cfg *config.Config) embedding.Embedder {
	switch cfg.Embedding.Provider {
	case "ollama":
		return p.Ollama
	case "gemini":
		return p.Gemini
	}
	return nil
}

// LLM returns a fallback chat client over cfg.LLM.Providers, or nil when
// none are listed.
func (p *Providers) LLM(cfg *config.Config, logger *zap.Logger) (*llm.Client, error) {
	if len(cfg.LLM.Providers) == 0 {
		return nil, nil
	}
	providers := make([]llm.Provider, 0, len(cfg.LLM.Providers))
	for _, name := range cfg.LLM.Providers {
		switch name {
		case "ollama":
			providers = append(providers, p.Ollama)
		case "gemini":
			providers = append(providers, p.Gemini)
		}
	}
	return llm.NewClient(providers, cfg.LLM.RequestsPerMinute, cfg.LLM.MaxFailures, logger)
}

// NewBackfiller returns nil when embedder is nil.
func NewBackfiller(cfg *config.Config, chats repository.ChatRepository, embedder embedding.Embedder, logger *zap.Logger) *embedding.Backfiller {
	if embedder == nil {
		return nil
	}
	return embedding.NewBackfiller(chats, embedder, embedding.Config{
		BatchSize:    cfg.Embedding.BatchSize,
		PollInterval: cfg.Embedding.PollInterval,
		CallTimeout:  cfg.Embedding.CallTimeout,
	}, logger)
}

// NewUploadStore creates the configured transcript store.
func NewUploadStore(ctx context.Context, cfg *config.Config) (upload.Store, error) {
	if cfg.Uploads.Backend == "minio" {
		m := cfg.Uploads.Minio
		store, err := upload.NewMinioStore(upload.MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			UseSSL:    m.UseSSL,
			Bucket:    m.Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio store: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket %s: %w", m.Bucket, err)
		}
		return store, nil
	}
	return upload.NewLocalStore(cfg.Uploads.Dir)
}

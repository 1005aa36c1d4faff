package wellnessservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/reflective-ai/reflective-server/internal/api"
	"github.com/reflective-ai/reflective-server/internal/config"
	"github.com/reflective-ai/reflective-server/internal/conversation"
	"github.com/reflective-ai/reflective-server/internal/embeddings"
	"github.com/reflective-ai/reflective-server/internal/llm"
	"github.com/reflective-ai/reflective-server/internal/logger"
	"github.com/reflective-ai/reflective-server/internal/memory"
	"github.com/reflective-ai/reflective-server/internal/mood"
	"github.com/reflective-ai/reflective-server/internal/personality"
	"github.com/reflective-ai/reflective-server/internal/tasks"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
	"github.com/reflective-ai/reflective-server/internal/vecstore/postgres"
	"github.com/reflective-ai/reflective-server/internal/vecstore/sqlite"
)

// Run starts the wellness service HTTP server and blocks until shutdown or error.
func Run(cfg *config.Config) error {
	log := logger.New("wellness-service")

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Str("chat_model", cfg.ChatModel).
		Msg("Wellness service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Collection store unavailable")
		return err
	}
	defer func() { _ = store.Close() }()

	deps, err := buildServices(ctx, cfg, store, log)
	if err != nil {
		return err
	}
	router := api.NewRouter(deps)

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore selects the collection store driver from configuration.
func newStore(cfg *config.Config, log zerolog.Logger) (vecstore.Store, error) {
	emb, err := embeddings.NewProvider(cfg.EmbedProvider, cfg.EmbedModel, cfg.OllamaURL, cfg.ChatBaseURL, cfg.ChatAPIKey)
	if err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.New(cfg.SQLitePath, emb, log)
	case "postgres":
		return postgres.New(cfg.PostgresDSN, emb, log)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// buildServices wires the memory manager and the domain services on top of it.
func buildServices(ctx context.Context, cfg *config.Config, store vecstore.Store, log zerolog.Logger) (api.Deps, error) {
	buf := memory.NewConversationBuffer(cfg.MaxTokenLimit)
	mem := memory.NewManager(ctx, store, buf, log)

	completer := llm.NewOpenAIClient(cfg.ChatBaseURL, cfg.ChatAPIKey, cfg.ChatModel, cfg.ChatTemperature, cfg.ChatMaxTokens)

	return api.Deps{
		Store:  store,
		Memory: mem,
		Chat:   conversation.NewService(mem, completer, log),
		Moods:  mood.NewTracker(mem, log),
		Tasks:  tasks.NewManager(mem, log),
		Modes:  personality.NewManager(),
		Log:    log,
	}, nil
}

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ArishaRashid/WhoYap/internal/handler"
	"github.com/ArishaRashid/WhoYap/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Chats    handler.ChatHandler
	Sessions handler.SessionHandler
	Quiz     handler.QuizHandler
	System   handler.SystemHandler
}

type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

func NewServer(h Handlers, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	s := &Server{
		router: router,
		logger: logger,
	}
	s.setupRoutes(h)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(h Handlers) {
	s.router.GET("/", h.System.Root)
	s.router.GET("/health", h.System.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	{
		api.POST("/uploads", h.Chats.Upload)
		api.POST("/chats/import", h.Chats.Import)
		api.POST("/chats/:id/embeddings", h.Chats.Embed)

		api.POST("/sessions", h.Sessions.CreateSession)
		api.GET("/sessions/:id", h.Sessions.GetSession)
		api.POST("/sessions/:id/join-requests", h.Sessions.RequestJoin)
		api.GET("/sessions/:id/join-requests", h.Sessions.ListJoinRequests)
		api.POST("/join-requests/:id/decision", h.Sessions.DecideJoin)

		api.GET("/sessions/:id/question", h.Quiz.NextRound)
		api.POST("/sessions/:id/answers", h.Quiz.SubmitAnswer)
		api.GET("/sessions/:id/scoreboard", h.Quiz.Scoreboard)

		api.POST("/llm/chat", h.System.LLMChat)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Server shutting down")
	return srv.Shutdown(shutdownCtx)
}

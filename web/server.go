package web

import (
	"context"
	"net/http"

	"matchday/config"
	"matchday/database"
	"matchday/rag"
	"matchday/web/handlers"
	"matchday/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	rag    *rag.Service
	store  *database.PostgresStore
	logger *zap.Logger
	config *config.Config
}

func NewServer(ragService *rag.Service, store *database.PostgresStore, logger *zap.Logger, cfg *config.Config) (*Server, error) {
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		// Add logger to context
		c.Set("logger", logger)
		c.Next()
	})

	limiter, err := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		BurstSize:         cfg.RateLimitBurstSize,
		MaxClients:        cfg.RateLimitMaxClients,
	}, logger)
	if err != nil {
		return nil, err
	}
	router.Use(middleware.RateLimitMiddleware(limiter))

	server := &Server{
		router: router,
		rag:    ragService,
		store:  store,
		logger: logger,
		config: cfg,
	}

	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	queryHandler := handlers.NewQueryHandler(s.rag, s.logger, s.config.DebugMode)
	leagueHandler := handlers.NewLeagueHandler(s.store, s.logger, s.config.DebugMode)

	api := s.router.Group("/api")
	api.GET("/health", leagueHandler.Health)
	api.GET("/standings", leagueHandler.Standings)
	api.GET("/matches", leagueHandler.Matches)
	api.GET("/matches/:id", leagueHandler.MatchByID)
	api.GET("/clubs", leagueHandler.Clubs)
	api.GET("/clubs/:id", leagueHandler.ClubByID)
	api.GET("/clubs/:id/players", leagueHandler.ClubPlayers)
	api.GET("/clubs/:id/form", leagueHandler.ClubForm)
	api.GET("/stadiums", leagueHandler.Stadiums)
	api.POST("/semantic-query", queryHandler.SemanticQuery)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}

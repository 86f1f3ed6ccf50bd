package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/cardarena/backend/internal/api/handlers"
	"github.com/cardarena/backend/internal/battle"
	"github.com/cardarena/backend/internal/config"
	"github.com/cardarena/backend/internal/matchmaking"
	"github.com/cardarena/backend/internal/middleware"
	"github.com/cardarena/backend/internal/stats"
	"github.com/cardarena/backend/internal/store"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	// Repositories
	queueRepo := store.NewQueueRepository(db)
	rankedRepo := store.NewRankedStatsRepository(db)
	playerStatsRepo := store.NewPlayerStatsRepository(db)
	deckRepo := store.NewDeckRepository(db)
	historyRepo := store.NewMatchHistoryRepository(db)
	playerRepo := store.NewPlayerRepository(db, rdb)

	// Matchmaking engine
	builder := matchmaking.NewSimDeckBuilder(deckRepo, matchmaking.SimDeckConfig{
		SimulatedOpponentID: cfg.SimulatedOpponentID,
		DeckSize:            cfg.DeckSize,
		LegendaryPoolSize:   cfg.LegendaryPoolSize,
		CardPoolSize:        cfg.CardPoolSize,
	})
	search := matchmaking.NewSearch(queueRepo, builder, matchmaking.SearchConfig{
		BandWidth:           cfg.RankBandWidth,
		BatchLimit:          cfg.SearchBatchLimit,
		WaitThreshold:       time.Duration(cfg.MatchWaitThresholdSeconds) * time.Second,
		SimulatedOpponentID: cfg.SimulatedOpponentID,
	})
	orch := matchmaking.NewOrchestrator(queueRepo, rankedRepo, deckRepo, playerRepo, search, cfg.DeckSize)

	// Post-match updater and battle state store
	updater := stats.NewUpdater(rankedRepo, playerStatsRepo, historyRepo, deckRepo, cfg.SimulatedOpponentID)
	states := battle.NewRedisStateStore(rdb, time.Duration(cfg.BattleStateTTLMinutes)*time.Minute)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", handlers.Register(playerRepo, cfg))
			auth.POST("/login", handlers.Login(playerRepo, cfg))
		}

		queue := v1.Group("/queue", middleware.RequireAuth(cfg))
		{
			queue.POST("/join", handlers.JoinQueue(orch))
			queue.DELETE("/:id", handlers.LeaveQueue(orch))
			queue.GET("/:id/status", handlers.QueueStatus(orch))
		}

		statsGroup := v1.Group("/stats", middleware.RequireAuth(cfg))
		{
			statsGroup.GET("/ranked", handlers.GetRankedStats(rankedRepo))
			statsGroup.GET("/practice", handlers.GetPlayerStats(playerStatsRepo))
			statsGroup.GET("/history", handlers.GetMatchHistory(historyRepo))
		}

		matches := v1.Group("/matches", middleware.RequireAuth(cfg))
		{
			matches.POST("/complete", handlers.CompleteMatch(updater, states))
		}
	}
}

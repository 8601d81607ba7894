package main

import (
	"log"
	"math/rand"
	"time"

	"github.com/saharsb963/chess/internal/config"
	"github.com/saharsb963/chess/internal/database"
	"github.com/saharsb963/chess/internal/handlers"
	"github.com/saharsb963/chess/internal/middleware"
	"github.com/saharsb963/chess/internal/rules"
	"github.com/saharsb963/chess/internal/services"
	"github.com/saharsb963/chess/internal/telegram"
	"github.com/saharsb963/chess/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()
	oracle := rules.NewLibraryOracle()
	store := services.NewGameStore(db)

	client := telegram.NewClient(cfg.BotToken)
	gate := telegram.NewAccessGate(client, cfg.ChannelID)
	gateway := telegram.NewGateway(client)

	gameService := services.NewGameService(oracle, store, gate, gateway, hub,
		rand.NewSource(time.Now().UnixNano()))
	matchmaker := services.NewMatchmaker(gameService, gate)

	if err := gameService.Restore(); err != nil {
		log.Fatalf("failed to restore games: %v", err)
	}

	handler := telegram.NewUpdateHandler(client, gate, matchmaker, gameService, store)
	bot := telegram.NewBot(client, handler, cfg.WebhookBaseURL, cfg.WebhookSecret)

	leaderboardHandler := handlers.NewLeaderboardHandler(store)
	gameHandler := handlers.NewGameHandler(gameService)
	wsHandler := handlers.NewWSHandler(hub)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Bot-API-Key"},
		AllowCredentials: true,
	}))

	r.GET("/ws/game/:id", wsHandler.HandleWebSocket)
	r.POST("/webhook/bot/:secret", bot.HandleWebhook)

	api := r.Group("/api/v1")
	api.Use(middleware.APIKeyAuth(cfg.BotAPIKey))
	{
		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		api.GET("/leaderboard/:telegram_id", leaderboardHandler.GetPlayerScore)
		api.GET("/games", gameHandler.ListGames)
	}

	if cfg.WebhookBaseURL != "" {
		if err := bot.Start(); err != nil {
			log.Fatalf("failed to start bot: %v", err)
		}
		defer bot.Stop()
	} else {
		log.Println("WEBHOOK_BASE_URL not set, webhook not registered")
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfchat/config"
	"github.com/tieubaoca/pdfchat/database"
	"github.com/tieubaoca/pdfchat/handler"
	"github.com/tieubaoca/pdfchat/repository"
	"github.com/tieubaoca/pdfchat/service"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the chat server",
	Long: `Starts the HTTP API: signup and login, PDF processing, questions over
HTTP or websocket, and per-user question history.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.JWTSecret == "" {
			log.Fatal("jwt_secret is not set (JWT_SECRET_USER)")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoDB.ConnectionURI())
		if err != nil {
			cancel()
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database(cfg.MongoDB.Database)
		if err := repository.EnsureUserIndexes(ctx, mongoDb); err != nil {
			cancel()
			log.Fatalf("Failed to prepare users collection: %v", err)
		}
		cancel()
		defer mongoClient.Disconnect(context.Background())

		//init repo
		userRepo := repository.NewUserRepo(mongoDb)
		questionRepo := repository.NewQuestionRepo(mongoDb)
		//init service
		userService := service.NewUserService(userRepo)
		historyService := service.NewHistoryService(questionRepo)
		app, err := newPipeline(context.Background(), cfg, historyService)
		if err != nil {
			log.Fatalf("Failed to build pipeline: %v", err)
		}
		defer app.Close()
		sessions := service.NewSessionStore()

		// Initialize handlers
		router := handler.NewRouter(cfg.JWTSecret, sessions, handler.Handlers{
			Login:     handler.NewLoginHandler(userService, sessions, cfg.JWTSecret, cfg.TokenTTL),
			Upload:    handler.NewUploadHandler(service.NewDocumentService(service.DefaultMaxFileSize), app.chat),
			Chat:      handler.NewChatHandler(app.chat),
			History:   handler.NewHistoryHandler(historyService),
			WebSocket: handler.NewWebSocketHandler(app.chat, sessions),
		}, cfg.CORSOrigins...)

		slog.Info("starting server", "port", cfg.Port, "provider", cfg.Provider.Name, "index", cfg.Index.Backend)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}

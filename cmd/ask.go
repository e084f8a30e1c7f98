/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfchat/config"
	"github.com/tieubaoca/pdfchat/database"
	"github.com/tieubaoca/pdfchat/repository"
	"github.com/tieubaoca/pdfchat/service"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about the indexed PDF files",
	Long: `Answers a question from the current vector index. With --username the
question and answer are also saved to that user's history.`,
	Run: func(cmd *cobra.Command, args []string) {
		question, _ := cmd.Flags().GetString("question")
		username, _ := cmd.Flags().GetString("username")
		showSources, _ := cmd.Flags().GetBool("sources")

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		ctx := context.Background()

		var (
			history service.HistoryService
			userID  string
		)
		if username != "" {
			connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			mongoClient, err := database.NewMongoClient(connectCtx, cfg.MongoDB.ConnectionURI())
			cancel()
			if err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			defer mongoClient.Disconnect(ctx)

			mongoDb := mongoClient.Database(cfg.MongoDB.Database)
			user, err := repository.NewUserRepo(mongoDb).GetUserByUsername(ctx, username)
			if err != nil {
				log.Fatalf("Failed to look up user: %v", err)
			}
			if user == nil {
				log.Fatalf("User %q does not exist", username)
			}
			userID = user.ID
			history = service.NewHistoryService(repository.NewQuestionRepo(mongoDb))
		}

		app, err := newPipeline(ctx, cfg, history)
		if err != nil {
			log.Fatalf("Failed to build pipeline: %v", err)
		}
		defer app.Close()

		// the CLI session adopts whatever build is on disk
		current, err := app.indexer.Current(ctx)
		if err != nil {
			log.Fatalf("No index available, run upload-document first: %v", err)
		}
		session := service.NewSession(userID, username)
		session.SetIndexHandle(current)

		resp, err := app.chat.Ask(ctx, session, question)
		if err != nil {
			log.Fatalf("Failed to answer: %v", err)
		}
		fmt.Println(resp.Answer)
		if showSources {
			for _, src := range resp.Sources {
				fmt.Printf("\n--- chunk %d (distance %.4f)\n%s\n", src.Position, src.Distance, src.Content)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringP("question", "q", "", "Question to ask")
	askCmd.Flags().StringP("username", "u", "", "Record the exchange in this user's history")
	askCmd.Flags().Bool("sources", false, "Print the retrieved chunks after the answer")
	askCmd.MarkFlagRequired("question")
}

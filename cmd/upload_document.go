/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfchat/config"
	"github.com/tieubaoca/pdfchat/service"
)

// uploadDocumentCmd represents the uploadDocument command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Index PDF files from disk",
	Long: `Extracts, chunks and embeds the given PDF files and replaces the vector
index with the result. Files are taken from --file (repeatable) and every
PDF found under --directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		files, _ := cmd.Flags().GetStringArray("file")
		directory, _ := cmd.Flags().GetString("directory")

		if directory != "" {
			found, err := service.FindPDFs(directory)
			if err != nil {
				log.Fatalf("Failed to read directory: %v", err)
			}
			files = append(files, found...)
		}
		if len(files) == 0 {
			log.Fatal("Nothing to upload: pass --file or --directory")
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		// local files are not size capped, only HTTP uploads are
		docs, err := service.NewDocumentService(0).FromPaths(files)
		if err != nil {
			log.Fatalf("Failed to read documents: %v", err)
		}

		ctx := context.Background()
		app, err := newPipeline(ctx, cfg, nil)
		if err != nil {
			log.Fatalf("Failed to build pipeline: %v", err)
		}
		defer app.Close()

		resp, err := app.chat.ProcessDocuments(ctx, service.NewSession("", ""), docs)
		if err != nil {
			log.Fatalf("Failed to process documents: %v", err)
		}
		fmt.Printf("Indexed %d documents, %d pages (%d without text), %d chunks\n",
			resp.Documents, resp.Pages, resp.SkippedPages, resp.Chunks)
		fmt.Printf("Build %s, model %s, dimension %d\n", resp.Index.BuildID, resp.Index.Model, resp.Index.Dimension)
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringArrayP("file", "f", []string{}, "Path to a PDF file to upload, repeatable")
	uploadDocumentCmd.Flags().StringP("directory", "d", "", "Directory to search for PDF files")
}

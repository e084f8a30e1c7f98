/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/tieubaoca/pdfchat/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// .env is optional; settings may come from the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}
}

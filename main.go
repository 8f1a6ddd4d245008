package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/overleg-dev/overleg/pkg/cli"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	ctx := context.Background()
	if err := cli.Run(ctx, os.Args); err != nil {
		os.Exit(err.Code)
	}
}

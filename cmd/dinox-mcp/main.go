package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/ironsheep/dinox-mcp/internal/bootstrap"
	"github.com/ironsheep/dinox-mcp/internal/config"
	"github.com/ironsheep/dinox-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Handle --version and --help before anything else
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("dinox-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printUsage()
			return 0
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		return 1
	}

	cfg, err := config.Load(args, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dinox-mcp: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'dinox-mcp --help' for usage.")
		return 1
	}

	// Log to stderr; stdout is the MCP channel for the stdio transport
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: "15:04:05",
	}))
	logger.Debug("starting dinox-mcp",
		"version", Version,
		"built", BuildTime,
		"commit", GitCommit,
		"transport", cfg.Transport,
	)

	if Version != "dev" {
		server.Version = Version
	}

	app := bootstrap.New(cfg, logger, bootstrap.Stdio{In: os.Stdin, Out: os.Stdout})
	return bootstrap.Run(app)
}

func printUsage() {
	fmt.Println("dinox-mcp - MCP server for DINO-X object detection")
	fmt.Println()
	fmt.Println("Usage: dinox-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --dinox-api-key=KEY       DINO-X API key (or DINOX_API_KEY)")
	fmt.Println("  --transport=stdio|http    Transport to serve (default: stdio)")
	fmt.Println("  --stdio, --http           Shorthands for --transport")
	fmt.Println("  --port=N                  HTTP port, 1-65535 (default: 3020)")
	fmt.Println("  --enable-client-key       HTTP only: take the API key from ?key= per request")
	fmt.Println("  --version, -v             Print version information")
	fmt.Println("  --help, -h                Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  DINOX_API_KEY             DINO-X API key")
	fmt.Println("  IMAGE_STORAGE_DIRECTORY   Where visualize-detections writes images")
	fmt.Println("  AUTH_TOKEN                HTTP only: require 'Authorization: Bearer <token>'")
	fmt.Println("  DINOX_API_BASE_URL        Override the DINO-X API base URL")
	fmt.Println("  DINOX_MCP_LOG_LEVEL       debug, info, warn or error (default: info)")
	fmt.Println()
	fmt.Println("A .env file in the working directory is loaded first.")
}

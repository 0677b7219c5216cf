package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MereWhiplash/neurocat/internal/config"
	"github.com/MereWhiplash/neurocat/internal/palette"
	"github.com/MereWhiplash/neurocat/internal/service"
	"github.com/MereWhiplash/neurocat/internal/storage"
	"github.com/MereWhiplash/neurocat/internal/tools"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	configPath := flag.String("config", "", "Config file (default ./neurocat.yaml, then ~/.config/neurocat/config.yaml)")

	// Storage flags
	storageDriver := flag.String("storage-driver", "", "Storage driver: sqlite, postgres, mongodb (overrides config)")
	dbPath := flag.String("db-path", "", "Path to SQLite database (sqlite driver)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (postgres driver)")
	mongoURI := flag.String("mongodb-uri", "", "MongoDB connection URI (mongodb driver)")

	// Palette flags
	palettePath := flag.String("palette", "", "Path to the color vector file (overrides config)")

	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("neurocat-server %s\n", version)
		return
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *storageDriver != "" {
		cfg.Storage.Driver = *storageDriver
	}
	if *dbPath != "" {
		cfg.Storage.SQLitePath = *dbPath
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *mongoURI != "" {
		cfg.Storage.MongoDBURI = *mongoURI
	}
	if *palettePath != "" {
		cfg.Palette.Path = *palettePath
	}

	ctx := context.Background()

	p, err := palette.Load(cfg.Palette.Path, cfg.Subtract())
	if err != nil {
		log.Fatalf("Failed to load palette: %v", err)
	}

	copts, err := cfg.ColorizerOptions()
	if err != nil {
		log.Fatalf("Failed to configure colorizer: %v", err)
	}

	// Initialize storage
	store, err := storage.New(ctx, cfg.StorageConfig())
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Create service
	svc := service.New(store, p, nil, service.Options{
		Colorizer: copts,
		Spectrum:  cfg.SpectrumOptions(),
	})

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "neurocat",
		Version: version,
	}, nil)

	// Register tools
	tools.Register(server, svc)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	// Start server with stdio transport
	log.Println("Starting neurocat MCP server...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// cmd/shim/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MereWhiplash/neurocat/internal/client"
	"github.com/MereWhiplash/neurocat/internal/config"
	"github.com/MereWhiplash/neurocat/internal/tools"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	apiURL := flag.String("api-url", "", "neurocat API URL (required)")
	flag.Parse()

	// Check for env var if flag not set
	if *apiURL == "" {
		*apiURL = os.Getenv("NEUROCAT_API_URL")
	}

	if *apiURL == "" {
		log.Fatal("API URL required: use --api-url or NEUROCAT_API_URL environment variable")
	}

	// Create API client
	apiClient := client.New(*apiURL)

	hctx, hcancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := apiClient.Health(hctx); err != nil {
		log.Printf("Warning: API at %s is not healthy: %v", *apiURL, err)
	}
	hcancel()

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "neurocat",
		Version: "1.0.0",
	}, nil)

	// Register tools
	tools.Register(server, apiClient)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	// Start server with stdio transport
	log.Printf("Starting neurocat shim for %s...", *apiURL)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

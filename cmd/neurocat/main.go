package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MereWhiplash/neurocat/internal/config"
	"github.com/MereWhiplash/neurocat/internal/embedder"
	"github.com/MereWhiplash/neurocat/internal/palette"
	"github.com/MereWhiplash/neurocat/internal/service"
	"github.com/MereWhiplash/neurocat/internal/storage"
)

// version is set by goreleaser via ldflags
var version = "dev"

var (
	flagConfig     string
	flagMulticolor int
)

var rootCmd = &cobra.Command{
	Use:          "neurocat [file|-]",
	Short:        "Show a file in neural color associations",
	Long:         "neurocat colors each word of its input by the palette colors its embedding associates with most strongly.",
	Version:      version,
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runColorize,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./neurocat.yaml, then ~/.config/neurocat/config.yaml)")
	rootCmd.Flags().IntVarP(&flagMulticolor, "multicolor", "m", 1, "Multiple colors per word instead of one color per word: 0 or 1")
}

func main() {
	log.SetFlags(0)
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// openService loads the palette and opens the word store. The embedder is
// only attached when withEmbedder is set.
func openService(ctx context.Context, cfg *config.Config, withEmbedder bool) (*service.Service, error) {
	p, err := palette.Load(cfg.Palette.Path, cfg.Subtract())
	if err != nil {
		return nil, fmt.Errorf("failed to load palette: %w", err)
	}

	copts, err := cfg.ColorizerOptions()
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx, cfg.StorageConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var emb embedder.Embedder
	if withEmbedder {
		emb = embedder.NewOllama(cfg.Embedder.OllamaURL, cfg.Embedder.Model)
	}

	return service.New(store, p, emb, service.Options{
		Colorizer: copts,
		Spectrum:  cfg.SpectrumOptions(),
	}), nil
}

// openInput opens name for reading; "" and "-" mean standard input.
func openInput(name string) (*os.File, func(), error) {
	if name == "" || name == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func runColorize(cmd *cobra.Command, args []string) error {
	if flagMulticolor != 0 && flagMulticolor != 1 {
		return fmt.Errorf("invalid --multicolor %d: must be 0 or 1", flagMulticolor)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := "-"
	if len(args) == 1 {
		name = args[0]
	}
	in, closeIn, err := openInput(name)
	if err != nil {
		return err
	}
	defer closeIn()

	svc, err := openService(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	c := svc.Colorizer().WithMulticolor(flagMulticolor == 1)
	return c.Stream(cmd.Context(), in, cmd.OutOrStdout())
}

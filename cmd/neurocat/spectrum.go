package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MereWhiplash/neurocat/internal/intensity"
	"github.com/MereWhiplash/neurocat/internal/types"
)

var (
	flagMapping    string
	flagBlocks     bool
	flagNormalize  bool
	flagMonochrome bool
)

var spectrumCmd = &cobra.Command{
	Use:   "spectrum WORD",
	Short: "Print the neural color spectrum for a word",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpectrum,
}

func init() {
	spectrumCmd.Flags().StringVar(&flagMapping, "mapping", "", fmt.Sprintf("Intensity mapping, one of %v (default from config)", intensity.Strategies()))
	spectrumCmd.Flags().BoolVar(&flagBlocks, "blocks", false, "Draw solid blocks instead of bars")
	spectrumCmd.Flags().BoolVar(&flagNormalize, "normalize", false, "Draw every color at the same brightness")
	spectrumCmd.Flags().BoolVar(&flagMonochrome, "mono", false, "Draw every color as white")
	rootCmd.AddCommand(spectrumCmd)
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagMapping != "" {
		cfg.Spectrum.Mapping = flagMapping
	}
	if cmd.Flags().Changed("blocks") {
		cfg.Spectrum.Blocks = flagBlocks
	}
	if cmd.Flags().Changed("normalize") {
		cfg.Spectrum.Normalize = flagNormalize
	}
	if cmd.Flags().Changed("mono") {
		cfg.Spectrum.Monochrome = flagMonochrome
	}

	mapping, err := cfg.Mapping()
	if err != nil {
		return err
	}

	svc, err := openService(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Spectrum(cmd.Context(), args[0], mapping)
	if errors.Is(err, types.ErrNotFound) {
		return fmt.Errorf("the word %s is not in the database", args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Statistics)
	for _, line := range res.Lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

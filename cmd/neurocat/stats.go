package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show word store and palette information",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := openService(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	st, err := svc.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	p := svc.Palette()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Driver:\t%s\n", st.Driver)
	fmt.Fprintf(w, "Words:\t%d\n", st.Words)
	fmt.Fprintf(w, "Dimension:\t%d\n", st.Dimension)
	if st.Extension != "" {
		fmt.Fprintf(w, "Extension:\t%s\n", st.Extension)
	}
	fmt.Fprintf(w, "Palette:\t%s\n", cfg.Palette.Path)
	fmt.Fprintf(w, "Colors:\t%d x %d\n", p.Len(), p.Dim())
	fmt.Fprintf(w, "Subtracted:\t%v\n", p.Subtracted())
	if st.Words > 0 && st.Dimension != p.Dim() {
		fmt.Fprintf(w, "Warning:\tword dimension %d does not match palette dimension %d\n", st.Dimension, p.Dim())
	}
	return w.Flush()
}

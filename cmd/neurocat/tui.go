package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/MereWhiplash/neurocat/internal/client"
	"github.com/MereWhiplash/neurocat/internal/tui"
)

var flagRemote string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Colorize words interactively",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagRemote, "remote", "", "Use a neurocat API server at this URL instead of local files (or NEUROCAT_API_URL)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mapping, err := cfg.Mapping()
	if err != nil {
		return err
	}
	copts, err := cfg.ColorizerOptions()
	if err != nil {
		return err
	}

	remote := flagRemote
	if remote == "" {
		remote = os.Getenv("NEUROCAT_API_URL")
	}

	var port tui.Port
	if remote != "" {
		c := client.New(remote)
		if err := c.Health(cmd.Context()); err != nil {
			return err
		}
		port = c
	} else {
		svc, err := openService(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer svc.Close()
		port = svc
	}

	m := tui.New(port, mapping, copts.Multicolor)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/MereWhiplash/neurocat/internal/importer"
)

var flagLockTimeout time.Duration

var importCmd = &cobra.Command{
	Use:   "import [file|-]",
	Short: "Embed and store the words of a word list",
	Long: fmt.Sprintf(`Import reads one word per line (default %s, '-' for standard input),
skips comments and entries that are not single words, and stores the
embedding of every word not already in the database.`, importer.DefaultWordList),
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().DurationVar(&flagLockTimeout, "lock-timeout", 10*time.Second, "How long to wait for another import to finish")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := importer.DefaultWordList
	if len(args) == 1 {
		name = args[0]
	}
	in, closeIn, err := openInput(name)
	if err != nil {
		return err
	}
	defer closeIn()

	lockPath, err := importer.LockPath(cfg.StorageConfig())
	if err != nil {
		return err
	}
	unlock, err := importer.AcquireLock(lockPath, flagLockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	svc, err := openService(cmd.Context(), cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Import(cmd.Context(), in, cmd.OutOrStdout())
	if res != nil {
		log.Printf("Read %d, skipped %d, already stored %d, inserted %d", res.Read, res.Skipped, res.Existing, res.Inserted)
	}
	return err
}

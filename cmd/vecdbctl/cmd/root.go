// Package cmd provides the CLI commands for vecdbctl.
package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdbconfig"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdblog"
)

var (
	dbDir     string
	debugMode bool
)

// NewRootCmd creates the root command for the vecdbctl CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vecdbctl",
		Short: "Inspect and drive an embeddable vector database from the shell",
		Long: `vecdbctl operates directly on a vecdb database directory: create
collections, insert and search vectors, and inspect persisted state.

It is a thin client over the same façade the embedding library exposes —
nothing here runs as a server.`,
	}

	cmd.PersistentFlags().StringVar(&dbDir, "dir", "./vecdb-data", "database directory")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newCreateCmd(),
		newInsertCmd(),
		newSearchCmd(),
		newGetCmd(),
		newDeleteCmd(),
		newListCmd(),
		newInfoCmd(),
		newImportCmd(),
		newBrowseCmd(),
	)

	return cmd
}

// newLogger builds the logger every subcommand uses, honoring --debug.
func newLogger() (*slog.Logger, func(), error) {
	cfg := vecdblog.DefaultConfig()
	if debugMode {
		cfg.Level = "debug"
	}
	return vecdblog.Setup(cfg)
}

// isInteractive reports whether stdout is a real terminal; info uses it to
// decide between plain and styled output, and browse refuses to run without
// one.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// loadDefaultConfig reads ~/.vecdbctl.yaml for the create command's flag
// defaults. A missing file, or a home directory that can't be resolved,
// falls back to vecdbconfig.DefaultConfig() — the file is an optional
// convenience, never required.
func loadDefaultConfig() vecdbconfig.Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return vecdbconfig.DefaultConfig()
	}

	cfg, err := vecdbconfig.Load(filepath.Join(home, ".vecdbctl.yaml"))
	if err != nil {
		return vecdbconfig.DefaultConfig()
	}
	return cfg
}

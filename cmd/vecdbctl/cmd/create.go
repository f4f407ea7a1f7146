package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdbconfig"
)

func newCreateCmd() *cobra.Command {
	var metric string
	var m int
	var efConstruction int
	var efSearch int

	cmd := &cobra.Command{
		Use:   "create <name> <dim>",
		Short: "Create a new collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			dim, err := parsePositiveInt(args[1], "dim")
			if err != nil {
				return err
			}

			cfg := vecdbconfig.Config{Metric: metric, M: m, EfConstruction: efConstruction, EfSearch: efSearch}
			if err := cfg.Validate(); err != nil {
				return err
			}

			db, cleanup, err := openDatabase()
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := db.Create(name, dim, metric, cfg.Params()); err != nil {
				return err
			}
			if err := db.Save(); err != nil {
				return err
			}

			fmt.Printf("created collection %q (dim=%d metric=%s)\n", name, dim, metric)
			return nil
		},
	}

	defaults := loadDefaultConfig()
	cmd.Flags().StringVar(&metric, "metric", defaults.Metric, "distance metric: l2, cosine, or dot")
	cmd.Flags().IntVar(&m, "m", defaults.M, "max neighbors per node per level")
	cmd.Flags().IntVar(&efConstruction, "ef-construction", defaults.EfConstruction, "bounded search capacity during insertion")
	cmd.Flags().IntVar(&efSearch, "ef-search", defaults.EfSearch, "default bounded search capacity during query")

	return cmd
}

package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <collection>",
		Short: "Show a collection's configuration and live/tombstoned counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := openDatabase()
			if err != nil {
				return err
			}
			defer cleanup()

			info, err := db.Info(args[0])
			if err != nil {
				return err
			}

			header := info.Name
			if isInteractive() {
				header = lipgloss.NewStyle().Bold(true).Render(header)
			}

			fmt.Println(header)
			fmt.Printf("  dimension:       %d\n", info.Dimension)
			fmt.Printf("  metric:          %s\n", info.Metric)
			fmt.Printf("  m:               %d\n", info.Params.M)
			fmt.Printf("  ef_construction: %d\n", info.Params.EfConstruction)
			fmt.Printf("  ef_search:       %d\n", info.Params.EfSearch)
			fmt.Printf("  live:            %d\n", info.Stats.Count)
			fmt.Printf("  tombstoned:      %d\n", info.Stats.DeletedCount)
			if !info.CreatedAt.IsZero() {
				fmt.Printf("  created:         %s\n", info.CreatedAt.Format(time.RFC3339))
			}
			if !info.UpdatedAt.IsZero() {
				fmt.Printf("  updated:         %s\n", info.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	return cmd
}

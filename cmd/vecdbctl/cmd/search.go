package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/vecdb/internal/vecdb/collection"
)

func newSearchCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search <collection> <vector>",
		Short: "Search for the k nearest neighbors of a vector",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vec, err := parseVector(args[1])
			if err != nil {
				return err
			}

			db, cleanup, err := openDatabase()
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := db.Get(args[0])
			if err != nil {
				return err
			}
			hits, err := c.Search(vec, k)
			if err != nil {
				return err
			}

			printResults(hits)
			return nil
		},
	}

	cmd.Flags().IntVar(&k, "k", 10, "number of nearest neighbors to return")
	return cmd
}

func printResults(hits []collection.Hit) {
	for _, h := range hits {
		fmt.Printf("%d\t%.6f\n", h.ID, h.Distance)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert <collection> <id> <vector>",
		Short: "Insert a vector under a caller-chosen id",
		Long:  `The vector is a comma-separated list of floats, e.g. "0.1,0.2,0.3".`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint64(args[1], "id")
			if err != nil {
				return err
			}
			vec, err := parseVector(args[2])
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
			if err := c.Insert(id, vec); err != nil {
				return err
			}
			if err := db.Save(); err != nil {
				return err
			}

			fmt.Printf("inserted id %d into %q\n", id, args[0])
			return nil
		},
	}
	return cmd
}
